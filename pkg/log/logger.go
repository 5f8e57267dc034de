package log

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type ctxKey string

const (
	SessionIDKey   ctxKey = "SessionID"
	StatementIDKey ctxKey = "StmtID"
)

// WithSession tags ctx with a session id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithStatement tags ctx with the id of the frame or statement being handled.
func WithStatement(ctx context.Context, stmtID int) context.Context {
	return context.WithValue(ctx, StatementIDKey, stmtID)
}

func ctxToString(ctx context.Context) string {
	var tags []string
	if sessionID := ctx.Value(SessionIDKey); sessionID != nil {
		tags = append(tags, fmt.Sprintf("session=%s", sessionID))
	}
	if stmtID := ctx.Value(StatementIDKey); stmtID != nil {
		tags = append(tags, fmt.Sprintf("stmt=%d", stmtID))
	}
	return fmt.Sprintf("[%s]", strings.Join(tags, ","))
}

func Println(l Loggable, args ...interface{}) {
	allArgs := make([]interface{}, 0, len(args)+1)
	allArgs = append(allArgs, ctxToString(l.Ctx()))
	allArgs = append(allArgs, args...)
	log.Println(allArgs...)
}

func Printf(l Loggable, format string, args ...interface{}) {
	log.Printf("%s %s", ctxToString(l.Ctx()), fmt.Sprintf(format, args...))
}

type Loggable interface {
	Ctx() context.Context
}

type ctxLoggable struct {
	ctx context.Context
}

func (c ctxLoggable) Ctx() context.Context {
	return c.ctx
}

// From wraps ctx so it can be passed to Println and Printf.
func From(ctx context.Context) Loggable {
	return ctxLoggable{ctx: ctx}
}
