package parse

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	litexLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//[^\n]*`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Keyword", Pattern: `(?:def_composite|def_literal_operator|def|commutative|let_alias|lets|let|know|by|have|return|clear|run|prove_by_contradiction|prove|contradiction|iff|if|not|and|or|is_property|is)\b`},
		{Name: "Ident", Pattern: `[A-Za-z0-9_][A-Za-z0-9_']*`},
		{Name: "Punct", Pattern: `<=>|=>|<=|[(),:;{}\[\]\\@]`},
	})
	litexParser = participle.MustBuild[Program](
		participle.Lexer(litexLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.Unquote("String"),
		participle.UseLookahead(4),
	)
)

type Program struct {
	Statements []*Statement `@@*`
}

type Statement struct {
	Pos lexer.Position

	Def          *Def                  `  @@`
	DefComposite *DefComposite         `| @@`
	DefLiteral   *DefLiteral           `| @@`
	LetAlias     *LetAlias             `| @@`
	Lets         *Lets                 `| @@`
	Let          *Let                  `| @@`
	Know         *Know                 `| @@`
	By           *By                   `| @@`
	Have         *Have                 `| @@`
	Return       *Return               `| @@`
	Clear        *Clear                `| @@`
	Run          *Run                  `| @@`
	ProveContra  *ProveByContradiction `| @@`
	Prove        *Prove                `| @@`
	Block        *Block                `| @@`
	Facts        *Facts                `| @@`
}

// Declarations

type Def struct {
	Commutative bool     `"def" @"commutative"?`
	Name        string   `@Ident`
	Params      []string `"(" ( @Ident ( "," @Ident )* )? ")"`
	Reqs        []*Fact  `( ":" @@ ( "," @@ )* )?`
	Body        *DefBody `@@? ";"`
}

type DefBody struct {
	Arrow  string  `@( "<=>" | "=>" | "<=" )`
	Concls []*Fact `"{" ( @@ ( "," @@ )* )? "}"`
}

type DefComposite struct {
	Name   string   `"def_composite" "\\" @Ident`
	Params []string `"{" ( @Ident ( "," @Ident )* )? "}"`
	Facts  []*Fact  `( ":" @@ ( "," @@ )* )? ";"`
}

type DefLiteral struct {
	Name   string   `"def_literal_operator" @Ident`
	Path   string   `"{" @String ","`
	Func   string   `@String "}"`
	Params []string `( @Ident ( "," @Ident )* )? ";"`
}

type Let struct {
	Names []string `"let" @Ident ( "," @Ident )*`
	Facts []*Fact  `( ":" @@ ( "," @@ )* )? ";"`
}

type Lets struct {
	Name    string  `"lets" @Ident`
	Pattern string  `@String`
	Facts   []*Fact `( ":" @@ ( "," @@ )* )? ";"`
}

type LetAlias struct {
	Name    string    `"let_alias" @Ident`
	Targets []*Symbol `@@ ( "," @@ )* ";"`
}

// Facts and proofs

type Know struct {
	Facts []*NamedFact `"know" @@ ( "," @@ )* ";"`
}

// NamedFact is a known fact with an optional `[name]` for by.
type NamedFact struct {
	Name string `( "[" @Ident "]" )?`
	Fact *Fact  `@@`
}

type By struct {
	Uses []*Use `"by" @@ ( "," @@ )* ";"`
}

type Use struct {
	Name string    `@Ident`
	Args []*Symbol `"(" ( @@ ( "," @@ )* )? ")"`
}

type Have struct {
	Names []string `"have" @Ident ( "," @Ident )* ":"`
	Facts []*Fact  `@@ ( "," @@ )* ";"`
}

type Prove struct {
	Goal  *Fact        `"prove" @@`
	Block []*Statement `"{" @@* "}" ";"?`
}

type ProveByContradiction struct {
	Goal          *Fact        `"prove_by_contradiction" @@`
	Block         []*Statement `"{" @@* "}"`
	Contradiction *Fact        `"contradiction" @@ ";"`
}

type Block struct {
	Statements []*Statement `"{" @@* "}" ";"?`
}

type Return struct {
	Facts []*Fact `"return" @@ ( "," @@ )* ";"`
}

type Clear struct {
	Keyword string `@"clear" ";"`
}

type Run struct {
	Path string `"run" @String ";"`
}

// Facts are checked, or with a trailing proof, proved: `p(a) prove { ... }`.
type Facts struct {
	Facts []*Fact       `@@ ( "," @@ )*`
	Proof *PostfixProof `( @@ ";"? | ";" )`
}

type PostfixProof struct {
	Block []*Statement `"prove" "{" @@* "}"`
}

type Fact struct {
	If      *IfFact  `  @@`
	Literal *Literal `| @@`
}

type IfFact struct {
	Kind   string   `@( "iff" | "if" )`
	Vars   []string `( @Ident ( "," @Ident )* )?`
	Reqs   []*Fact  `( ":" @@ ( "," @@ )* )?`
	Concls []*Fact  `"{" ( @@ ( "," @@ )* )? "}"`
}

type Literal struct {
	Not  bool  `@"not"?`
	Atom *Atom `@@`
}

type Atom struct {
	Paren   *Formula `  "(" @@ ")"`
	Builtin *Builtin `| @@`
	Opt     *Opt     `| @@`
	Is      *IsFact  `| @@`
}

// Formula is a flat chain; `and` binds tighter than `or`.
type Formula struct {
	Head *Literal       `@@`
	Tail []*FormulaTail `@@*`
}

type FormulaTail struct {
	Op      string   `@( "and" | "or" )`
	Literal *Literal `@@`
}

type Builtin struct {
	Name string `@"is_property"`
	Arg  string `"(" @Ident ")"`
}

type Opt struct {
	Name string    `@Ident`
	Args []*Symbol `"(" ( @@ ( "," @@ )* )? ")"`
}

// IsFact is `x is p`, short for p(x).
type IsFact struct {
	Subject *Symbol `@@ "is"`
	Pred    string  `@Ident`
}

type Symbol struct {
	Composite *CompositeSymbol `  @@`
	Literal   *LiteralSymbol   `| @@`
	Name      string           `| @Ident`
}

type CompositeSymbol struct {
	Name string    `"\\" @Ident`
	Args []*Symbol `"{" ( @@ ( "," @@ )* )? "}"`
}

type LiteralSymbol struct {
	Name string    `"@" @Ident`
	Args []*Symbol `"{" ( @@ ( "," @@ )* )? "}"`
}
