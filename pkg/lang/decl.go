package lang

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	pp "github.com/vilterp/litex/pkg/prettyprint"
)

type DefKind int

const (
	// DefPlain only declares the operator.
	DefPlain DefKind = iota
	// DefIf: p(params) and reqs imply concls.
	DefIf
	// DefIff: DefIf, plus concls imply p(params) and reqs.
	DefIff
	// DefOnlyIf: concls imply reqs and p(params).
	DefOnlyIf
)

var defArrows = map[DefKind]string{
	DefIf:     "=>",
	DefIff:    "<=>",
	DefOnlyIf: "<=",
}

// Operator

type OperatorDecl struct {
	Name        string
	Params      []string
	Reqs        []Fact
	Concls      []Fact
	Kind        DefKind
	Commutative bool
}

func (d *OperatorDecl) Arity() int {
	return len(d.Params)
}

func (d *OperatorDecl) Format() pp.Doc {
	docs := []pp.Doc{pp.Text("def ")}
	if d.Commutative {
		docs = append(docs, pp.Text("commutative "))
	}
	docs = append(docs, pp.Textf("%s(%s)", d.Name, strings.Join(d.Params, ", ")))
	if len(d.Reqs) > 0 {
		docs = append(docs, pp.Text(": "), formatFacts(d.Reqs))
	}
	if arrow, ok := defArrows[d.Kind]; ok {
		docs = append(docs, pp.Textf(" %s ", arrow), pp.Surround("{", formatFacts(d.Concls), "}"))
	}
	return pp.Seq(docs)
}

func (d *OperatorDecl) String() string {
	return d.Format().String()
}

func (d *OperatorDecl) self() *OptFact {
	return NewOpt(d.Name, Singletons(d.Params...)...)
}

// definingFacts returns the implications a definition asserts about its operator.
func (d *OperatorDecl) definingFacts() []Fact {
	withSelf := append([]Fact{d.self()}, d.Reqs...)
	switch d.Kind {
	case DefIf:
		return []Fact{NewIf(d.Params, withSelf, d.Concls)}
	case DefIff:
		return []Fact{
			NewIf(d.Params, withSelf, d.Concls),
			NewIf(d.Params, d.Concls, withSelf),
		}
	case DefOnlyIf:
		selfLast := append(append([]Fact{}, d.Reqs...), d.self())
		return []Fact{NewIf(d.Params, d.Concls, selfLast)}
	}
	return nil
}

// Composite

// CompositeDecl declares an operator usable in composite symbols, `\name{args}`.
type CompositeDecl struct {
	Name   string
	Params []string
	Facts  []Fact
}

func (d *CompositeDecl) Format() pp.Doc {
	doc := pp.Textf("def_composite \\%s{%s}", d.Name, strings.Join(d.Params, ", "))
	if len(d.Facts) == 0 {
		return doc
	}
	return pp.Seq([]pp.Doc{doc, pp.Text(": "), formatFacts(d.Facts)})
}

// Literal operator

// LiteralDecl names an externally resolved function producing symbols, `@name{args}`.
type LiteralDecl struct {
	Name   string
	Path   string
	Func   string
	Params []string
}

func (d *LiteralDecl) Format() pp.Doc {
	return pp.Textf("def_literal_operator %s {%q, %q} %s", d.Name, d.Path, d.Func, strings.Join(d.Params, ", "))
}

// Pattern

// PatternDecl declares every name matching Regex as a singleton.
type PatternDecl struct {
	Name    string
	Pattern string
	Regex   *regexp.Regexp
}

func NewPatternDecl(name, pattern string) (*PatternDecl, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, errors.Wrapf(err, "compiling pattern for %s", name)
	}
	return &PatternDecl{Name: name, Pattern: pattern, Regex: re}, nil
}

func (d *PatternDecl) matches(name string) bool {
	return d.Name == name || d.Regex.MatchString(name)
}
