package lang

import (
	"fmt"

	"github.com/pkg/errors"
)

// LiteralResolver computes the symbol a literal operator call stands for.
// Implementations return a symbol, or ErrNoLiteral when they have none.
type LiteralResolver interface {
	Resolve(path, fn string, args []Symbol) (Symbol, error)
}

type LiteralFunc func(args []Symbol) (Symbol, error)

// FuncResolver resolves literal operators to Go functions registered by path and name.
type FuncResolver map[string]LiteralFunc

var _ LiteralResolver = FuncResolver{}

func literalKey(path, fn string) string {
	return path + "#" + fn
}

func (r FuncResolver) Register(path, fn string, f LiteralFunc) {
	r[literalKey(path, fn)] = f
}

func (r FuncResolver) Resolve(path, fn string, args []Symbol) (Symbol, error) {
	f, ok := r[literalKey(path, fn)]
	if !ok {
		return nil, errors.Errorf("no literal function %s in %s", fn, path)
	}
	return f(args)
}

// badLiteral is a resolver breaking its contract: no symbol and no error.
type badLiteral struct {
	Call *LiteralCall
}

func (e *badLiteral) Error() string {
	return fmt.Sprintf("parse error: %s produced neither a symbol nor ErrNoLiteral", e.Call)
}

// resolveLiterals returns a symbol mapper replacing literal calls with their values.
func resolveLiterals(env *Scope, resolver LiteralResolver) func(Symbol) (Symbol, error) {
	return func(sym Symbol) (Symbol, error) {
		call, ok := sym.(*LiteralCall)
		if !ok {
			return sym, nil
		}
		decl, ok := env.LookupLiteral(call.Operator)
		if !ok {
			return nil, &UndeclaredOperatorError{Name: call.Operator}
		}
		if len(call.Args) != len(decl.Params) {
			return nil, &ArityMismatchError{Name: call.Operator, Wanted: len(decl.Params), Got: len(call.Args)}
		}
		if resolver == nil {
			return nil, errors.Errorf("no literal resolver for %s", call)
		}
		out, err := resolver.Resolve(decl.Path, decl.Func, call.Args)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", call)
		}
		if out == nil {
			return nil, &badLiteral{Call: call}
		}
		return out, nil
	}
}
