package litex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	clog "github.com/vilterp/litex/pkg/log"
)

// channel is one frame sent over a connection, and the reply to it.
type channel struct {
	connection *connection
	rawFrame   string
	id         int // unique within the connection

	context context.Context
}

func (channel *channel) Ctx() context.Context {
	return channel.context
}

func newChannel(rawFrame string, ID int, conn *connection) *channel {
	return &channel{
		connection: conn,
		rawFrame:   rawFrame,
		id:         ID,
		context:    clog.WithStatement(conn.Ctx(), ID),
	}
}

func (channel *channel) handleFrame() {
	if err := channel.run(); err != nil {
		clog.Printf(channel, "%s", err.Error())
		channel.writeErrorMessage(err)
	}
}

func (channel *channel) run() error {
	frame := strings.TrimSpace(channel.rawFrame)
	if strings.HasPrefix(frame, `\`) {
		ack, err := channel.connection.runCommand(frame)
		if err != nil {
			return err
		}
		channel.writeAckMessage(ack)
		return nil
	}
	results, err := channel.connection.session.Run(frame)
	if err != nil {
		return err
	}
	channel.writeResults(results)
	return nil
}

// Commands

const commandHelp = `\h	help
\env	dump the session's environment as JSON
\save <name>	save a snapshot of the environment
\snapshots	list saved snapshots
\show <name>	dump a saved snapshot as JSON`

func (conn *connection) runCommand(frame string) (string, error) {
	fields := strings.Fields(frame)
	switch fields[0] {
	case `\h`:
		return commandHelp, nil
	case `\env`:
		return marshalIndent(conn.session.Snapshot())
	case `\save`:
		if len(fields) != 2 {
			return "", &commandUsage{Command: fields[0], Usage: "<name>"}
		}
		if err := conn.engine.SaveSnapshot(conn.session, fields[1]); err != nil {
			return "", errors.Wrap(err, "saving snapshot")
		}
		return fmt.Sprintf("saved %s", fields[1]), nil
	case `\snapshots`:
		names, err := conn.engine.ListSnapshots(conn.session)
		if err != nil {
			return "", errors.Wrap(err, "listing snapshots")
		}
		return strings.Join(names, "\n"), nil
	case `\show`:
		if len(fields) != 2 {
			return "", &commandUsage{Command: fields[0], Usage: "<name>"}
		}
		saved, err := conn.engine.LoadSnapshot(conn.session, fields[1])
		if err != nil {
			return "", err
		}
		return marshalIndent(saved)
	}
	return "", &unknownCommand{Command: fields[0]}
}

func marshalIndent(v interface{}) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding")
	}
	return string(out), nil
}

// Messages

type ChannelMessage struct {
	StatementID int              `json:"statement_id"`
	Message     *MessageToClient `json:"message"`
}

type MessageToClientType int

const (
	ErrorMessage MessageToClientType = iota
	AckMessage
	ResultsMessage
)

func (m MessageToClientType) String() string {
	switch m {
	case ErrorMessage:
		return "error"
	case AckMessage:
		return "ack"
	case ResultsMessage:
		return "results"
	}
	panic(fmt.Errorf("unknown type %d", m))
}

func (m MessageToClientType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MessageToClientType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*m = ErrorMessage
	case "ack":
		*m = AckMessage
	case "results":
		*m = ResultsMessage
	default:
		return errors.Errorf("unknown message type %q", text)
	}
	return nil
}

type MessageToClient struct {
	Type         MessageToClientType `json:"type"`
	ErrorMessage *string             `json:"error,omitempty"`
	AckMessage   *string             `json:"ack,omitempty"`
	Results      []*Result           `json:"results,omitempty"`
}

func (channel *channel) writeErrorMessage(err error) {
	errStr := err.Error()
	channel.writeMessage(&MessageToClient{
		Type:         ErrorMessage,
		ErrorMessage: &errStr,
	})
}

func (channel *channel) writeAckMessage(message string) {
	channel.writeMessage(&MessageToClient{
		Type:       AckMessage,
		AckMessage: &message,
	})
}

func (channel *channel) writeResults(results []*Result) {
	channel.writeMessage(&MessageToClient{
		Type:    ResultsMessage,
		Results: results,
	})
}

func (channel *channel) writeMessage(message *MessageToClient) {
	channel.connection.messages <- &ChannelMessage{
		StatementID: channel.id,
		Message:     message,
	}
}
