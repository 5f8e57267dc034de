package litex

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/vilterp/litex/pkg/lang"
	clog "github.com/vilterp/litex/pkg/log"
	"github.com/vilterp/litex/pkg/parse"
)

// RunFile runs a program file in a fresh session and writes its messages to
// out. ok is false if any statement ended in Error.
func (e *Engine) RunFile(path string, out io.Writer) (bool, error) {
	stmts, err := readProgram(path)
	if err != nil {
		return false, err
	}

	session := e.StartSession()
	defer e.EndSession(session)
	clog.Printf(session, "running %s (%d statements)", path, len(stmts))

	results := session.RunStatements(stmts)
	if err := WriteResults(out, results); err != nil {
		return false, err
	}
	for _, result := range results {
		if result.Verdict == "error" {
			return false, nil
		}
	}
	return true, nil
}

func readProgram(path string) ([]lang.Statement, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	stmts, err := parse.ParseFile(path, string(src))
	if err != nil {
		return nil, &parseError{error: err}
	}
	return stmts, nil
}

// fileLoader reads the files `run` statements name, relative to root.
type fileLoader struct {
	root string
}

var _ lang.Loader = &fileLoader{}

func (l *fileLoader) Load(path string) ([]lang.Statement, error) {
	if filepath.IsAbs(path) {
		return nil, errors.Errorf("%s is not relative to %s", path, l.root)
	}
	full := filepath.Join(l.root, path)
	rel, err := filepath.Rel(l.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, errors.Errorf("%s is outside %s", path, l.root)
	}
	return readProgram(full)
}

// WriteResults prints every message, one per line.
func WriteResults(out io.Writer, results []*Result) error {
	for _, result := range results {
		for _, msg := range result.Messages {
			if _, err := fmt.Fprintln(out, msg); err != nil {
				return errors.Wrap(err, "writing results")
			}
		}
	}
	return nil
}

// WatchFile runs path now and again every time it changes, until ctx is done.
// Each run gets a fresh session. Run failures are written to out and don't
// stop watching.
func (e *Engine) WatchFile(ctx context.Context, path string, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer watcher.Close()

	// Watch the directory: editors often replace files rather than write them.
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", path)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(abs))
	}

	rerun := func() {
		fmt.Fprintf(out, "=== %s\n", path)
		if _, err := e.RunFile(path, out); err != nil {
			fmt.Fprintln(out, err)
		}
	}
	rerun()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			rerun()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			clog.Println(clog.From(ctx), "watch error:", err)
		}
	}
}
