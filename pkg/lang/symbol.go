package lang

import (
	pp "github.com/vilterp/litex/pkg/prettyprint"
)

// Reserved placeholder names. They are always bound and can't be declared.
const (
	AnySymbol    = "any"
	ExistsSymbol = "exists"
)

func isReserved(name string) bool {
	return name == AnySymbol || name == ExistsSymbol
}

// Bindings maps bound variable names to the symbols substituted for them.
type Bindings map[string]Symbol

type Symbol interface {
	Format() pp.Doc
	String() string
	Equal(Symbol) bool
	Substitute(Bindings) Symbol
	// Singletons returns the names of every singleton inside the symbol, in order.
	Singletons() []string
	mapSymbols(func(Symbol) (Symbol, error)) (Symbol, error)
}

// Singleton

type Singleton struct {
	Name string
}

var _ Symbol = &Singleton{}

func NewSingleton(name string) *Singleton {
	return &Singleton{Name: name}
}

func (s *Singleton) Format() pp.Doc {
	return pp.Text(s.Name)
}

func (s *Singleton) String() string {
	return s.Name
}

func (s *Singleton) Equal(other Symbol) bool {
	o, ok := other.(*Singleton)
	return ok && o.Name == s.Name
}

func (s *Singleton) Substitute(b Bindings) Symbol {
	if sym, ok := b[s.Name]; ok {
		return sym
	}
	return s
}

func (s *Singleton) Singletons() []string {
	return []string{s.Name}
}

func (s *Singleton) mapSymbols(f func(Symbol) (Symbol, error)) (Symbol, error) {
	return f(s)
}

// Composite

type Composite struct {
	Operator string
	Args     []Symbol
}

var _ Symbol = &Composite{}

func NewComposite(operator string, args ...Symbol) *Composite {
	return &Composite{Operator: operator, Args: args}
}

func (c *Composite) Format() pp.Doc {
	return pp.Seq([]pp.Doc{
		pp.Textf("\\%s", c.Operator),
		pp.Surround("{", formatSymbols(c.Args), "}"),
	})
}

func (c *Composite) String() string {
	return c.Format().String()
}

func (c *Composite) Equal(other Symbol) bool {
	o, ok := other.(*Composite)
	if !ok || o.Operator != c.Operator {
		return false
	}
	return symbolsEqual(c.Args, o.Args)
}

func (c *Composite) Substitute(b Bindings) Symbol {
	return &Composite{Operator: c.Operator, Args: substituteSymbols(c.Args, b)}
}

func (c *Composite) Singletons() []string {
	return singletonsOf(c.Args)
}

func (c *Composite) mapSymbols(f func(Symbol) (Symbol, error)) (Symbol, error) {
	args, err := mapSymbolList(c.Args, f)
	if err != nil {
		return nil, err
	}
	return f(&Composite{Operator: c.Operator, Args: args})
}

// Literal call

// LiteralCall is `@name{args}` as written. The executor resolves it to another
// symbol through the LiteralResolver before the statement runs.
type LiteralCall struct {
	Operator string
	Args     []Symbol
}

var _ Symbol = &LiteralCall{}

func NewLiteralCall(operator string, args ...Symbol) *LiteralCall {
	return &LiteralCall{Operator: operator, Args: args}
}

func (l *LiteralCall) Format() pp.Doc {
	return pp.Seq([]pp.Doc{
		pp.Textf("@%s", l.Operator),
		pp.Surround("{", formatSymbols(l.Args), "}"),
	})
}

func (l *LiteralCall) String() string {
	return l.Format().String()
}

func (l *LiteralCall) Equal(other Symbol) bool {
	o, ok := other.(*LiteralCall)
	return ok && o.Operator == l.Operator && symbolsEqual(l.Args, o.Args)
}

func (l *LiteralCall) Substitute(b Bindings) Symbol {
	return &LiteralCall{Operator: l.Operator, Args: substituteSymbols(l.Args, b)}
}

func (l *LiteralCall) Singletons() []string {
	return singletonsOf(l.Args)
}

func (l *LiteralCall) mapSymbols(f func(Symbol) (Symbol, error)) (Symbol, error) {
	args, err := mapSymbolList(l.Args, f)
	if err != nil {
		return nil, err
	}
	return f(&LiteralCall{Operator: l.Operator, Args: args})
}

// helpers

func formatSymbols(syms []Symbol) pp.Doc {
	docs := make([]pp.Doc, len(syms))
	for idx, sym := range syms {
		docs[idx] = sym.Format()
	}
	return pp.Join(docs, pp.CommaSpace)
}

func symbolsEqual(a, b []Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if !a[idx].Equal(b[idx]) {
			return false
		}
	}
	return true
}

func substituteSymbols(syms []Symbol, b Bindings) []Symbol {
	out := make([]Symbol, len(syms))
	for idx, sym := range syms {
		out[idx] = sym.Substitute(b)
	}
	return out
}

func singletonsOf(syms []Symbol) []string {
	var out []string
	for _, sym := range syms {
		out = append(out, sym.Singletons()...)
	}
	return out
}

func mapSymbolList(syms []Symbol, f func(Symbol) (Symbol, error)) ([]Symbol, error) {
	out := make([]Symbol, len(syms))
	for idx, sym := range syms {
		mapped, err := sym.mapSymbols(f)
		if err != nil {
			return nil, err
		}
		out[idx] = mapped
	}
	return out, nil
}

// Singletons builds a symbol list out of plain names.
func Singletons(names ...string) []Symbol {
	out := make([]Symbol, len(names))
	for idx, name := range names {
		out[idx] = NewSingleton(name)
	}
	return out
}
