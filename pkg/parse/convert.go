package parse

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
	"github.com/vilterp/litex/pkg/lang"
)

// Error is a syntax error with the position it was found at.
type Error struct {
	Pos     lexer.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Parse parses a program into statements.
func Parse(src string) ([]lang.Statement, error) {
	return ParseFile("<input>", src)
}

// ParseFile is Parse with a filename for error positions.
func ParseFile(filename string, src string) ([]lang.Statement, error) {
	program, err := litexParser.ParseString(filename, src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, &Error{Pos: perr.Position(), Message: perr.Message()}
		}
		return nil, errors.Wrap(err, "parsing")
	}
	stmts, err := convertStatements(program.Statements)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	return stmts, nil
}

func convertStatements(stmts []*Statement) ([]lang.Statement, error) {
	out := make([]lang.Statement, len(stmts))
	for idx, stmt := range stmts {
		converted, err := stmt.toLang()
		if err != nil {
			return nil, err
		}
		out[idx] = converted
	}
	return out, nil
}

func (s *Statement) toLang() (lang.Statement, error) {
	switch {
	case s.Def != nil:
		return s.Def.toLang()
	case s.DefComposite != nil:
		facts, err := convertFacts(s.DefComposite.Facts)
		if err != nil {
			return nil, err
		}
		return &lang.DefCompositeStmt{Decl: &lang.CompositeDecl{
			Name:   s.DefComposite.Name,
			Params: s.DefComposite.Params,
			Facts:  facts,
		}}, nil
	case s.DefLiteral != nil:
		return &lang.DefLiteralStmt{Decl: &lang.LiteralDecl{
			Name:   s.DefLiteral.Name,
			Path:   s.DefLiteral.Path,
			Func:   s.DefLiteral.Func,
			Params: s.DefLiteral.Params,
		}}, nil
	case s.LetAlias != nil:
		return &lang.LetAliasStmt{Name: s.LetAlias.Name, Targets: convertSymbols(s.LetAlias.Targets)}, nil
	case s.Lets != nil:
		facts, err := convertFacts(s.Lets.Facts)
		if err != nil {
			return nil, err
		}
		return &lang.LetsStmt{Name: s.Lets.Name, Pattern: s.Lets.Pattern, Facts: facts}, nil
	case s.Let != nil:
		facts, err := convertFacts(s.Let.Facts)
		if err != nil {
			return nil, err
		}
		return &lang.LetStmt{Names: s.Let.Names, Facts: facts}, nil
	case s.Know != nil:
		return s.Know.toLang()
	case s.By != nil:
		uses := make([]*lang.KnownUse, len(s.By.Uses))
		for idx, use := range s.By.Uses {
			uses[idx] = &lang.KnownUse{Name: use.Name, Args: convertSymbols(use.Args)}
		}
		return &lang.ByStmt{Uses: uses}, nil
	case s.Return != nil:
		facts, err := convertFacts(s.Return.Facts)
		if err != nil {
			return nil, err
		}
		return &lang.ReturnStmt{Facts: facts}, nil
	case s.Clear != nil:
		return &lang.ClearStmt{}, nil
	case s.Run != nil:
		return &lang.RunStmt{Path: s.Run.Path}, nil
	case s.Have != nil:
		facts, err := convertFacts(s.Have.Facts)
		if err != nil {
			return nil, err
		}
		return &lang.HaveStmt{Names: s.Have.Names, Facts: facts}, nil
	case s.ProveContra != nil:
		goal, err := s.ProveContra.Goal.toLang()
		if err != nil {
			return nil, err
		}
		block, err := convertStatements(s.ProveContra.Block)
		if err != nil {
			return nil, err
		}
		contradiction, err := s.ProveContra.Contradiction.toLang()
		if err != nil {
			return nil, err
		}
		return &lang.ProveByContradictionStmt{Goal: goal, Block: block, Contradiction: contradiction}, nil
	case s.Prove != nil:
		goal, err := s.Prove.Goal.toLang()
		if err != nil {
			return nil, err
		}
		block, err := convertStatements(s.Prove.Block)
		if err != nil {
			return nil, err
		}
		return &lang.ProveStmt{Goal: goal, Block: block}, nil
	case s.Block != nil:
		block, err := convertStatements(s.Block.Statements)
		if err != nil {
			return nil, err
		}
		return &lang.BlockStmt{Stmts: block}, nil
	case s.Facts != nil:
		facts, err := convertFacts(s.Facts.Facts)
		if err != nil {
			return nil, err
		}
		if s.Facts.Proof == nil {
			return &lang.FactStmt{Facts: facts}, nil
		}
		block, err := convertStatements(s.Facts.Proof.Block)
		if err != nil {
			return nil, err
		}
		return &lang.PostfixProveStmt{Facts: facts, Block: block}, nil
	}
	return nil, &Error{Pos: s.Pos, Message: "empty statement"}
}

func (k *Know) toLang() (lang.Statement, error) {
	stmt := &lang.KnowStmt{}
	named := false
	for _, known := range k.Facts {
		fact, err := known.Fact.toLang()
		if err != nil {
			return nil, err
		}
		stmt.Facts = append(stmt.Facts, fact)
		stmt.Names = append(stmt.Names, known.Name)
		named = named || known.Name != ""
	}
	if !named {
		stmt.Names = nil
	}
	return stmt, nil
}

var defKinds = map[string]lang.DefKind{
	"=>":  lang.DefIf,
	"<=>": lang.DefIff,
	"<=":  lang.DefOnlyIf,
}

func (d *Def) toLang() (lang.Statement, error) {
	reqs, err := convertFacts(d.Reqs)
	if err != nil {
		return nil, err
	}
	decl := &lang.OperatorDecl{
		Name:        d.Name,
		Params:      d.Params,
		Reqs:        reqs,
		Commutative: d.Commutative,
	}
	if d.Body != nil {
		decl.Kind = defKinds[d.Body.Arrow]
		decl.Concls, err = convertFacts(d.Body.Concls)
		if err != nil {
			return nil, err
		}
	}
	return &lang.DefStmt{Decl: decl}, nil
}

// Facts

func convertFacts(facts []*Fact) ([]lang.Fact, error) {
	if len(facts) == 0 {
		return nil, nil
	}
	out := make([]lang.Fact, len(facts))
	for idx, fact := range facts {
		converted, err := fact.toLang()
		if err != nil {
			return nil, err
		}
		out[idx] = converted
	}
	return out, nil
}

func (f *Fact) toLang() (lang.Fact, error) {
	if f.If != nil {
		return f.If.toLang()
	}
	return f.Literal.toLang()
}

func (f *IfFact) toLang() (lang.Fact, error) {
	reqs, err := convertFacts(f.Reqs)
	if err != nil {
		return nil, err
	}
	concls, err := convertFacts(f.Concls)
	if err != nil {
		return nil, err
	}
	if f.Kind == "iff" {
		return lang.NewIff(f.Vars, reqs, concls), nil
	}
	return lang.NewIf(f.Vars, reqs, concls), nil
}

func (l *Literal) toLang() (lang.Fact, error) {
	fact, err := l.Atom.toLang()
	if err != nil || !l.Not {
		return fact, err
	}
	return fact.Negate()
}

func (a *Atom) toLang() (lang.Fact, error) {
	switch {
	case a.Paren != nil:
		return a.Paren.toLang()
	case a.Builtin != nil:
		return lang.NewBuiltin(a.Builtin.Name, a.Builtin.Arg), nil
	case a.Opt != nil:
		return lang.NewOpt(a.Opt.Name, convertSymbols(a.Opt.Args)...), nil
	default:
		return lang.NewOpt(a.Is.Pred, a.Is.Subject.toLang()), nil
	}
}

// toLang groups the chain into or-separated runs of and, each folded to the left.
func (f *Formula) toLang() (lang.Fact, error) {
	head, err := f.Head.toLang()
	if err != nil {
		return nil, err
	}
	var disjuncts []lang.Fact
	conj := head
	for _, tail := range f.Tail {
		next, err := tail.Literal.toLang()
		if err != nil {
			return nil, err
		}
		if tail.Op == "and" {
			conj = lang.NewAnd(conj, next)
			continue
		}
		disjuncts = append(disjuncts, conj)
		conj = next
	}
	result := conj
	if len(disjuncts) > 0 {
		result = disjuncts[0]
		for _, disjunct := range append(disjuncts[1:], conj) {
			result = lang.NewOr(result, disjunct)
		}
	}
	return result, nil
}

// Symbols

func convertSymbols(syms []*Symbol) []lang.Symbol {
	out := make([]lang.Symbol, len(syms))
	for idx, sym := range syms {
		out[idx] = sym.toLang()
	}
	return out
}

func (s *Symbol) toLang() lang.Symbol {
	switch {
	case s.Composite != nil:
		return lang.NewComposite(s.Composite.Name, convertSymbols(s.Composite.Args)...)
	case s.Literal != nil:
		return lang.NewLiteralCall(s.Literal.Name, convertSymbols(s.Literal.Args)...)
	}
	return lang.NewSingleton(s.Name)
}
