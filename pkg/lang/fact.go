package lang

import (
	"strings"

	pp "github.com/vilterp/litex/pkg/prettyprint"
)

// Fact is a closed union: OptFact, LogicFact, OrFact, AndFact and BuiltinFact.
type Fact interface {
	Format() pp.Doc
	String() string
	Substitute(Bindings) Fact
	// Negate flips the polarity. Implications have no polarity and can't be negated.
	Negate() (Fact, error)
	// RootOpts returns every atomic fact the fact concludes, with the path of
	// nodes enclosing it.
	RootOpts() []RootOpt
	// MapSymbols rebuilds the fact with every symbol passed through f.
	MapSymbols(f func(Symbol) (Symbol, error)) (Fact, error)

	isFact()
}

type RootOpt struct {
	Opt  *OptFact
	Path []Fact
}

// Opt

type OptFact struct {
	Name    string
	Args    []Symbol
	Negated bool
}

var _ Fact = &OptFact{}

func NewOpt(name string, args ...Symbol) *OptFact {
	return &OptFact{Name: name, Args: args}
}

// Not returns the negated form of an atomic fact.
func Not(opt *OptFact) *OptFact {
	return &OptFact{Name: opt.Name, Args: opt.Args, Negated: !opt.Negated}
}

func (*OptFact) isFact() {}

func (o *OptFact) Format() pp.Doc {
	doc := pp.Seq([]pp.Doc{
		pp.Text(o.Name),
		pp.Surround("(", formatSymbols(o.Args), ")"),
	})
	if o.Negated {
		return pp.Seq([]pp.Doc{pp.Text("not "), doc})
	}
	return doc
}

func (o *OptFact) String() string {
	return o.Format().String()
}

func (o *OptFact) Substitute(b Bindings) Fact {
	return &OptFact{Name: o.Name, Args: substituteSymbols(o.Args, b), Negated: o.Negated}
}

func (o *OptFact) Negate() (Fact, error) {
	return Not(o), nil
}

func (o *OptFact) RootOpts() []RootOpt {
	return []RootOpt{{Opt: o}}
}

func (o *OptFact) MapSymbols(f func(Symbol) (Symbol, error)) (Fact, error) {
	args, err := mapSymbolList(o.Args, f)
	if err != nil {
		return nil, err
	}
	return &OptFact{Name: o.Name, Args: args, Negated: o.Negated}, nil
}

// Logic

type LogicKind int

const (
	If LogicKind = iota
	Iff
)

func (k LogicKind) String() string {
	if k == Iff {
		return "iff"
	}
	return "if"
}

// LogicFact is `if vars: reqs {concls}` (or iff). It is always asserted positively.
type LogicFact struct {
	Kind   LogicKind
	Vars   []string
	Reqs   []Fact
	Concls []Fact
}

var _ Fact = &LogicFact{}

func NewIf(vars []string, reqs []Fact, concls []Fact) *LogicFact {
	return &LogicFact{Kind: If, Vars: vars, Reqs: reqs, Concls: concls}
}

func NewIff(vars []string, reqs []Fact, concls []Fact) *LogicFact {
	return &LogicFact{Kind: Iff, Vars: vars, Reqs: reqs, Concls: concls}
}

func (*LogicFact) isFact() {}

func (l *LogicFact) Format() pp.Doc {
	docs := []pp.Doc{pp.Text(l.Kind.String())}
	if len(l.Vars) > 0 {
		docs = append(docs, pp.Text(" "), pp.Text(strings.Join(l.Vars, ", ")))
	}
	if len(l.Reqs) > 0 {
		docs = append(docs, pp.Text(": "), formatFacts(l.Reqs))
	}
	docs = append(docs, pp.Text(" "), pp.Surround("{", formatFacts(l.Concls), "}"))
	return pp.Seq(docs)
}

func (l *LogicFact) String() string {
	return l.Format().String()
}

func (l *LogicFact) Substitute(b Bindings) Fact {
	inner := b.without(l.Vars)
	return &LogicFact{
		Kind:   l.Kind,
		Vars:   l.Vars,
		Reqs:   substituteFacts(l.Reqs, inner),
		Concls: substituteFacts(l.Concls, inner),
	}
}

func (l *LogicFact) Negate() (Fact, error) {
	return nil, &notNegatable{Fact: l}
}

func (l *LogicFact) RootOpts() []RootOpt {
	var out []RootOpt
	for _, concl := range l.Concls {
		for _, root := range concl.RootOpts() {
			out = append(out, RootOpt{Opt: root.Opt, Path: append([]Fact{l}, root.Path...)})
		}
	}
	return out
}

func (l *LogicFact) MapSymbols(f func(Symbol) (Symbol, error)) (Fact, error) {
	reqs, err := mapFactList(l.Reqs, f)
	if err != nil {
		return nil, err
	}
	concls, err := mapFactList(l.Concls, f)
	if err != nil {
		return nil, err
	}
	return &LogicFact{Kind: l.Kind, Vars: l.Vars, Reqs: reqs, Concls: concls}, nil
}

// Or

type OrFact struct {
	Left, Right Fact
	Negated     bool
}

var _ Fact = &OrFact{}

func NewOr(left, right Fact) *OrFact {
	return &OrFact{Left: left, Right: right}
}

func (*OrFact) isFact() {}

func (o *OrFact) Format() pp.Doc {
	return formatBinary(o.Left, "or", o.Right, o.Negated)
}

func (o *OrFact) String() string {
	return o.Format().String()
}

func (o *OrFact) Substitute(b Bindings) Fact {
	return &OrFact{Left: o.Left.Substitute(b), Right: o.Right.Substitute(b), Negated: o.Negated}
}

func (o *OrFact) Negate() (Fact, error) {
	return &OrFact{Left: o.Left, Right: o.Right, Negated: !o.Negated}, nil
}

func (o *OrFact) RootOpts() []RootOpt {
	return binaryRootOpts(o, o.Left, o.Right)
}

func (o *OrFact) MapSymbols(f func(Symbol) (Symbol, error)) (Fact, error) {
	left, right, err := mapBinary(o.Left, o.Right, f)
	if err != nil {
		return nil, err
	}
	return &OrFact{Left: left, Right: right, Negated: o.Negated}, nil
}

// disjuncts flattens nested positive ors.
func (o *OrFact) disjuncts() []Fact {
	var out []Fact
	for _, side := range []Fact{o.Left, o.Right} {
		if inner, ok := side.(*OrFact); ok && !inner.Negated {
			out = append(out, inner.disjuncts()...)
			continue
		}
		out = append(out, side)
	}
	return out
}

// And

type AndFact struct {
	Left, Right Fact
	Negated     bool
}

var _ Fact = &AndFact{}

func NewAnd(left, right Fact) *AndFact {
	return &AndFact{Left: left, Right: right}
}

func (*AndFact) isFact() {}

func (a *AndFact) Format() pp.Doc {
	return formatBinary(a.Left, "and", a.Right, a.Negated)
}

func (a *AndFact) String() string {
	return a.Format().String()
}

func (a *AndFact) Substitute(b Bindings) Fact {
	return &AndFact{Left: a.Left.Substitute(b), Right: a.Right.Substitute(b), Negated: a.Negated}
}

func (a *AndFact) Negate() (Fact, error) {
	return &AndFact{Left: a.Left, Right: a.Right, Negated: !a.Negated}, nil
}

func (a *AndFact) RootOpts() []RootOpt {
	return binaryRootOpts(a, a.Left, a.Right)
}

func (a *AndFact) MapSymbols(f func(Symbol) (Symbol, error)) (Fact, error) {
	left, right, err := mapBinary(a.Left, a.Right, f)
	if err != nil {
		return nil, err
	}
	return &AndFact{Left: left, Right: right, Negated: a.Negated}, nil
}

// Builtin

// BuiltinFact is a predicate resolved by a BuiltinResolver instead of the store,
// e.g. is_property(p).
type BuiltinFact struct {
	Name    string
	Args    []string
	Negated bool
}

var _ Fact = &BuiltinFact{}

func NewBuiltin(name string, args ...string) *BuiltinFact {
	return &BuiltinFact{Name: name, Args: args}
}

func (*BuiltinFact) isFact() {}

func (b *BuiltinFact) Format() pp.Doc {
	doc := pp.Textf("%s(%s)", b.Name, strings.Join(b.Args, ", "))
	if b.Negated {
		return pp.Seq([]pp.Doc{pp.Text("not "), doc})
	}
	return doc
}

func (b *BuiltinFact) String() string {
	return b.Format().String()
}

func (b *BuiltinFact) Substitute(Bindings) Fact {
	return b
}

func (b *BuiltinFact) Negate() (Fact, error) {
	return &BuiltinFact{Name: b.Name, Args: b.Args, Negated: !b.Negated}, nil
}

func (b *BuiltinFact) RootOpts() []RootOpt {
	return nil
}

func (b *BuiltinFact) MapSymbols(func(Symbol) (Symbol, error)) (Fact, error) {
	return b, nil
}

// helpers

func (b Bindings) without(names []string) Bindings {
	if len(names) == 0 {
		return b
	}
	out := make(Bindings, len(b))
	for name, sym := range b {
		out[name] = sym
	}
	for _, name := range names {
		delete(out, name)
	}
	return out
}

func formatFacts(facts []Fact) pp.Doc {
	docs := make([]pp.Doc, len(facts))
	for idx, fact := range facts {
		docs[idx] = fact.Format()
	}
	return pp.Join(docs, pp.CommaSpace)
}

func formatBinary(left Fact, op string, right Fact, negated bool) pp.Doc {
	doc := pp.Surround("(", pp.Seq([]pp.Doc{
		left.Format(), pp.Textf(" %s ", op), right.Format(),
	}), ")")
	if negated {
		return pp.Seq([]pp.Doc{pp.Text("not "), doc})
	}
	return doc
}

func substituteFacts(facts []Fact, b Bindings) []Fact {
	out := make([]Fact, len(facts))
	for idx, fact := range facts {
		out[idx] = fact.Substitute(b)
	}
	return out
}

func mapFactList(facts []Fact, f func(Symbol) (Symbol, error)) ([]Fact, error) {
	out := make([]Fact, len(facts))
	for idx, fact := range facts {
		mapped, err := fact.MapSymbols(f)
		if err != nil {
			return nil, err
		}
		out[idx] = mapped
	}
	return out, nil
}

func mapBinary(left, right Fact, f func(Symbol) (Symbol, error)) (Fact, Fact, error) {
	l, err := left.MapSymbols(f)
	if err != nil {
		return nil, nil, err
	}
	r, err := right.MapSymbols(f)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func binaryRootOpts(parent, left, right Fact) []RootOpt {
	var out []RootOpt
	for _, side := range []Fact{left, right} {
		for _, root := range side.RootOpts() {
			out = append(out, RootOpt{Opt: root.Opt, Path: append([]Fact{parent}, root.Path...)})
		}
	}
	return out
}

// negateAll negates every fact, failing on the first one that can't be negated.
func negateAll(facts []Fact) ([]Fact, error) {
	out := make([]Fact, len(facts))
	for idx, fact := range facts {
		neg, err := fact.Negate()
		if err != nil {
			return nil, err
		}
		out[idx] = neg
	}
	return out, nil
}

// walkFact calls visit on fact and every fact nested inside it.
func walkFact(fact Fact, visit func(Fact)) {
	visit(fact)
	switch f := fact.(type) {
	case *LogicFact:
		for _, req := range f.Reqs {
			walkFact(req, visit)
		}
		for _, concl := range f.Concls {
			walkFact(concl, visit)
		}
	case *OrFact:
		walkFact(f.Left, visit)
		walkFact(f.Right, visit)
	case *AndFact:
		walkFact(f.Left, visit)
		walkFact(f.Right, visit)
	}
}
