package litex

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vilterp/litex/pkg/lang"
)

// Engine owns what sessions share: configuration, literal functions, the
// snapshot store and metrics.
type Engine struct {
	config    *Config
	snapshots *SnapshotStore
	literals  lang.FuncResolver

	mu struct {
		sync.Mutex
		sessions        map[string]*Session
		sessionsStarted int
	}

	ctx     context.Context
	metrics *metrics
}

func NewEngine(config *Config) (*Engine, error) {
	engine := &Engine{
		config:   config,
		literals: StdLiterals(),
		ctx:      context.Background(),
	}
	engine.mu.sessions = map[string]*Session{}
	if config.DataFile != "" {
		snapshots, err := OpenSnapshotStore(config.DataFile)
		if err != nil {
			return nil, errors.Wrap(err, "opening snapshot store")
		}
		engine.snapshots = snapshots
	}
	engine.metrics = newMetrics(engine)
	return engine, nil
}

// StartSession opens a session wired to the engine's literals and metrics.
func (e *Engine) StartSession() *Session {
	session := NewSession(e.ctx, e.config.Engine)
	session.executor.Literals = e.literals
	session.executor.Observer = e.metrics
	if e.config.RunRoot != "" {
		session.executor.Loader = &fileLoader{root: e.config.RunRoot}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.mu.sessions[session.ID] = session
	e.mu.sessionsStarted++
	return session
}

func (e *Engine) EndSession(session *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.mu.sessions, session.ID)
}

// RegisterLiteral makes fn available to `def_literal_operator name {path, fn}`.
// Register before starting sessions.
func (e *Engine) RegisterLiteral(path string, fn string, f lang.LiteralFunc) {
	e.literals.Register(path, fn, f)
}

func (e *Engine) SaveSnapshot(session *Session, name string) error {
	if e.snapshots == nil {
		return &snapshotsDisabled{}
	}
	return e.snapshots.Save(session.ID, name, session.Snapshot())
}

func (e *Engine) LoadSnapshot(session *Session, name string) (*SavedSnapshot, error) {
	if e.snapshots == nil {
		return nil, &snapshotsDisabled{}
	}
	return e.snapshots.Load(session.ID, name)
}

func (e *Engine) ListSnapshots(session *Session) ([]string, error) {
	if e.snapshots == nil {
		return nil, &snapshotsDisabled{}
	}
	return e.snapshots.List(session.ID)
}

func (e *Engine) Registry() *prometheus.Registry {
	return e.metrics.registry
}

func (e *Engine) Close() error {
	if e.snapshots == nil {
		return nil
	}
	return e.snapshots.Close()
}
