package litex

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/vilterp/litex/pkg/lang"
	clog "github.com/vilterp/litex/pkg/log"
	"github.com/vilterp/litex/pkg/parse"
)

// Session is one root environment and the executor driving it. Sessions are
// not safe for concurrent use; each connection or file run owns its own.
type Session struct {
	ID       string
	root     *lang.Scope
	executor *lang.Executor
	// entries mirrors root.EntryCount() for readers on other goroutines.
	entries atomic.Int64

	context context.Context
}

// Result is what running one top-level statement produced.
type Result struct {
	Statement string   `json:"statement"`
	Verdict   string   `json:"verdict"`
	Messages  []string `json:"messages"`
}

func NewSession(ctx context.Context, opts lang.Options) *Session {
	id := uuid.NewString()
	return &Session{
		ID:       id,
		root:     lang.NewScope(nil),
		executor: lang.NewExecutor(opts),
		context:  clog.WithSession(ctx, id),
	}
}

func (s *Session) Ctx() context.Context {
	return s.context
}

func (s *Session) Scope() *lang.Scope {
	return s.root
}

func (s *Session) Executor() *lang.Executor {
	return s.executor
}

// Run parses src and executes its statements in order. Statements that end in
// Error don't stop the ones after them.
func (s *Session) Run(src string) ([]*Result, error) {
	stmts, err := parse.Parse(src)
	if err != nil {
		return nil, &parseError{error: err}
	}
	return s.RunStatements(stmts), nil
}

func (s *Session) RunStatements(stmts []lang.Statement) []*Result {
	results := make([]*Result, len(stmts))
	for idx, stmt := range stmts {
		verdict := s.executor.Exec(s.root, stmt)
		messages := s.root.Drain()
		if messages == nil {
			messages = []string{}
		}
		results[idx] = &Result{
			Statement: stmt.String(),
			Verdict:   verdict.String(),
			Messages:  messages,
		}
	}
	s.entries.Store(int64(s.root.EntryCount()))
	return results
}

// StoredEntries is the number of fact entries in the session's environment
// as of the last statement it ran.
func (s *Session) StoredEntries() int {
	return int(s.entries.Load())
}

func (s *Session) Snapshot() *lang.Snapshot {
	return s.root.Snapshot()
}
