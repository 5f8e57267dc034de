package lang

import (
	"strings"

	pp "github.com/vilterp/litex/pkg/prettyprint"
)

type Statement interface {
	Format() pp.Doc
	String() string
	// Kind names the statement, e.g. "let" or "prove".
	Kind() string
	isStatement()
}

// Let

type LetStmt struct {
	Names []string
	Facts []Fact
}

var _ Statement = &LetStmt{}

func (*LetStmt) isStatement() {}
func (*LetStmt) Kind() string { return "let" }

func (s *LetStmt) Format() pp.Doc {
	return declStmtDoc(pp.Textf("let %s", strings.Join(s.Names, ", ")), s.Facts)
}

func (s *LetStmt) String() string { return s.Format().String() }

// Lets

// LetsStmt declares every name matching Pattern.
type LetsStmt struct {
	Name    string
	Pattern string
	Facts   []Fact
}

var _ Statement = &LetsStmt{}

func (*LetsStmt) isStatement() {}
func (*LetsStmt) Kind() string { return "lets" }

func (s *LetsStmt) Format() pp.Doc {
	return declStmtDoc(pp.Textf("lets %s %q", s.Name, s.Pattern), s.Facts)
}

func (s *LetsStmt) String() string { return s.Format().String() }

// Alias

type LetAliasStmt struct {
	Name    string
	Targets []Symbol
}

var _ Statement = &LetAliasStmt{}

func (*LetAliasStmt) isStatement() {}
func (*LetAliasStmt) Kind() string { return "let_alias" }

func (s *LetAliasStmt) Format() pp.Doc {
	return pp.Seq([]pp.Doc{pp.Textf("let_alias %s ", s.Name), formatSymbols(s.Targets), pp.Text(";")})
}

func (s *LetAliasStmt) String() string { return s.Format().String() }

// Know

// KnowStmt asserts Facts. Names, when present, is parallel to Facts; a
// non-empty name lets `by` apply that fact later.
type KnowStmt struct {
	Names []string
	Facts []Fact
}

var _ Statement = &KnowStmt{}

func (*KnowStmt) isStatement() {}
func (*KnowStmt) Kind() string { return "know" }

func (s *KnowStmt) name(idx int) string {
	if idx < len(s.Names) {
		return s.Names[idx]
	}
	return ""
}

func (s *KnowStmt) Format() pp.Doc {
	docs := make([]pp.Doc, len(s.Facts))
	for idx, fact := range s.Facts {
		docs[idx] = fact.Format()
		if name := s.name(idx); name != "" {
			docs[idx] = pp.Seq([]pp.Doc{pp.Textf("[%s] ", name), docs[idx]})
		}
	}
	return pp.Seq([]pp.Doc{pp.Text("know "), pp.Join(docs, pp.CommaSpace), pp.Text(";")})
}

func (s *KnowStmt) String() string { return s.Format().String() }

// By

// KnownUse applies the known fact Name to Args.
type KnownUse struct {
	Name string
	Args []Symbol
}

func (u *KnownUse) Format() pp.Doc {
	return pp.Seq([]pp.Doc{pp.Text(u.Name), pp.Surround("(", formatSymbols(u.Args), ")")})
}

func (u *KnownUse) String() string { return u.Format().String() }

type ByStmt struct {
	Uses []*KnownUse
}

var _ Statement = &ByStmt{}

func (*ByStmt) isStatement() {}
func (*ByStmt) Kind() string { return "by" }

func (s *ByStmt) Format() pp.Doc {
	docs := make([]pp.Doc, len(s.Uses))
	for idx, use := range s.Uses {
		docs[idx] = use.Format()
	}
	return pp.Seq([]pp.Doc{pp.Text("by "), pp.Join(docs, pp.CommaSpace), pp.Text(";")})
}

func (s *ByStmt) String() string { return s.Format().String() }

// Definitions

type DefStmt struct {
	Decl *OperatorDecl
}

var _ Statement = &DefStmt{}

func (*DefStmt) isStatement() {}
func (*DefStmt) Kind() string { return "def" }

func (s *DefStmt) Format() pp.Doc {
	return pp.Seq([]pp.Doc{s.Decl.Format(), pp.Text(";")})
}

func (s *DefStmt) String() string { return s.Format().String() }

type DefCompositeStmt struct {
	Decl *CompositeDecl
}

var _ Statement = &DefCompositeStmt{}

func (*DefCompositeStmt) isStatement() {}
func (*DefCompositeStmt) Kind() string { return "def_composite" }

func (s *DefCompositeStmt) Format() pp.Doc {
	return pp.Seq([]pp.Doc{s.Decl.Format(), pp.Text(";")})
}

func (s *DefCompositeStmt) String() string { return s.Format().String() }

type DefLiteralStmt struct {
	Decl *LiteralDecl
}

var _ Statement = &DefLiteralStmt{}

func (*DefLiteralStmt) isStatement() {}
func (*DefLiteralStmt) Kind() string { return "def_literal_operator" }

func (s *DefLiteralStmt) Format() pp.Doc {
	return pp.Seq([]pp.Doc{s.Decl.Format(), pp.Text(";")})
}

func (s *DefLiteralStmt) String() string { return s.Format().String() }

// Proofs

type ProveStmt struct {
	Goal  Fact
	Block []Statement
}

var _ Statement = &ProveStmt{}

func (*ProveStmt) isStatement() {}
func (*ProveStmt) Kind() string { return "prove" }

func (s *ProveStmt) Format() pp.Doc {
	return pp.Block(pp.Seq([]pp.Doc{pp.Text("prove "), s.Goal.Format(), pp.Text(" ")}), formatStmts(s.Block))
}

func (s *ProveStmt) String() string { return s.Format().String() }

type ProveByContradictionStmt struct {
	Goal          Fact
	Block         []Statement
	Contradiction Fact
}

var _ Statement = &ProveByContradictionStmt{}

func (*ProveByContradictionStmt) isStatement() {}
func (*ProveByContradictionStmt) Kind() string { return "prove_by_contradiction" }

func (s *ProveByContradictionStmt) Format() pp.Doc {
	return pp.Seq([]pp.Doc{
		pp.Block(pp.Seq([]pp.Doc{pp.Text("prove_by_contradiction "), s.Goal.Format(), pp.Text(" ")}), formatStmts(s.Block)),
		pp.Text(" contradiction "), s.Contradiction.Format(), pp.Text(";"),
	})
}

func (s *ProveByContradictionStmt) String() string { return s.Format().String() }

// PostfixProveStmt is `facts prove { block }`: the block runs in a child scope
// and the facts must hold at its end.
type PostfixProveStmt struct {
	Facts []Fact
	Block []Statement
}

var _ Statement = &PostfixProveStmt{}

func (*PostfixProveStmt) isStatement() {}
func (*PostfixProveStmt) Kind() string { return "prove" }

func (s *PostfixProveStmt) Format() pp.Doc {
	return pp.Seq([]pp.Doc{
		pp.Block(pp.Seq([]pp.Doc{formatFacts(s.Facts), pp.Text(" prove ")}), formatStmts(s.Block)),
		pp.Text(";"),
	})
}

func (s *PostfixProveStmt) String() string { return s.Format().String() }

// Have

// HaveStmt introduces witnesses: each `exists` in Facts is replaced by the next name.
type HaveStmt struct {
	Names []string
	Facts []Fact
}

var _ Statement = &HaveStmt{}

func (*HaveStmt) isStatement() {}
func (*HaveStmt) Kind() string { return "have" }

func (s *HaveStmt) Format() pp.Doc {
	return declStmtDoc(pp.Textf("have %s", strings.Join(s.Names, ", ")), s.Facts)
}

func (s *HaveStmt) String() string { return s.Format().String() }

// Block

type BlockStmt struct {
	Stmts []Statement
}

var _ Statement = &BlockStmt{}

func (*BlockStmt) isStatement() {}
func (*BlockStmt) Kind() string { return "block" }

func (s *BlockStmt) Format() pp.Doc {
	return pp.Block(pp.Empty, formatStmts(s.Stmts))
}

func (s *BlockStmt) String() string { return s.Format().String() }

// ReturnStmt checks facts inside a block and stores them in the block's parent.
type ReturnStmt struct {
	Facts []Fact
}

var _ Statement = &ReturnStmt{}

func (*ReturnStmt) isStatement() {}
func (*ReturnStmt) Kind() string { return "return" }

func (s *ReturnStmt) Format() pp.Doc {
	return pp.Seq([]pp.Doc{pp.Text("return "), formatFacts(s.Facts), pp.Text(";")})
}

func (s *ReturnStmt) String() string { return s.Format().String() }

// Special statements

// ClearStmt forgets everything declared and known in the current scope.
type ClearStmt struct{}

var _ Statement = &ClearStmt{}

func (*ClearStmt) isStatement() {}
func (*ClearStmt) Kind() string { return "clear" }

func (s *ClearStmt) Format() pp.Doc { return pp.Text("clear;") }

func (s *ClearStmt) String() string { return s.Format().String() }

// RunStmt runs the statements of another file in the current scope.
type RunStmt struct {
	Path string
}

var _ Statement = &RunStmt{}

func (*RunStmt) isStatement() {}
func (*RunStmt) Kind() string { return "run" }

func (s *RunStmt) Format() pp.Doc { return pp.Textf("run %q;", s.Path) }

func (s *RunStmt) String() string { return s.Format().String() }

// Fact

// FactStmt asks for each fact to be checked.
type FactStmt struct {
	Facts []Fact
}

var _ Statement = &FactStmt{}

func (*FactStmt) isStatement() {}
func (*FactStmt) Kind() string { return "fact" }

func (s *FactStmt) Format() pp.Doc {
	return pp.Seq([]pp.Doc{formatFacts(s.Facts), pp.Text(";")})
}

func (s *FactStmt) String() string { return s.Format().String() }

// helpers

func declStmtDoc(head pp.Doc, facts []Fact) pp.Doc {
	if len(facts) == 0 {
		return pp.Seq([]pp.Doc{head, pp.Text(";")})
	}
	return pp.Seq([]pp.Doc{head, pp.Text(": "), formatFacts(facts), pp.Text(";")})
}

func formatStmts(stmts []Statement) []pp.Doc {
	docs := make([]pp.Doc, len(stmts))
	for idx, stmt := range stmts {
		docs[idx] = stmt.Format()
	}
	return docs
}

// declaredNames returns the names a statement would declare in its own scope.
func declaredNames(stmt Statement) []string {
	switch s := stmt.(type) {
	case *LetStmt:
		return s.Names
	case *HaveStmt:
		return s.Names
	case *LetsStmt:
		return []string{s.Name}
	case *LetAliasStmt:
		return []string{s.Name}
	case *DefStmt:
		return []string{s.Decl.Name}
	case *DefCompositeStmt:
		return []string{s.Decl.Name}
	case *DefLiteralStmt:
		return []string{s.Decl.Name}
	}
	return nil
}
