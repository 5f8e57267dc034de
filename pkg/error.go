package litex

import "fmt"

type parseError struct {
	error error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.error.Error())
}

type unknownCommand struct {
	Command string
}

func (e *unknownCommand) Error() string {
	return fmt.Sprintf(`unknown command: %s (\h for help)`, e.Command)
}

type commandUsage struct {
	Command string
	Usage   string
}

func (e *commandUsage) Error() string {
	return fmt.Sprintf("usage: %s %s", e.Command, e.Usage)
}

type noSuchSnapshot struct {
	SessionID string
	Name      string
}

func (e *noSuchSnapshot) Error() string {
	return fmt.Sprintf("no snapshot %q in session %s", e.Name, e.SessionID)
}

type snapshotsDisabled struct{}

func (e *snapshotsDisabled) Error() string {
	return "snapshots are disabled: no data file configured"
}
