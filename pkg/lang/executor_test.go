package lang

import (
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func def(name string, params ...string) *DefStmt {
	return &DefStmt{Decl: &OperatorDecl{Name: name, Params: params}}
}

func let(names ...string) *LetStmt {
	return &LetStmt{Names: names}
}

func know(fs ...Fact) *KnowStmt {
	return &KnowStmt{Facts: fs}
}

func check(fs ...Fact) *FactStmt {
	return &FactStmt{Facts: fs}
}

type recordingObserver struct {
	kinds    []string
	verdicts []Verdict
}

func (r *recordingObserver) StatementExecuted(kind string, verdict Verdict, _ time.Duration) {
	r.kinds = append(r.kinds, kind)
	r.verdicts = append(r.verdicts, verdict)
}

type execCase struct {
	stmt    Statement
	verdict Verdict
}

func runCases(t *testing.T, ex *Executor, env *Scope, cases []execCase) {
	t.Helper()
	for idx, testCase := range cases {
		verdict := ex.Exec(env, testCase.stmt)
		require.Equal(t, testCase.verdict, verdict, "case %d: %s\nmessages: %v", idx, testCase.stmt, env.Messages())
	}
}

func TestIdempotentReassertion(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("p", "x"), True},
		{let("a"), True},
		{know(opt("p", "a")), True},
		{know(opt("p", "a")), True},
		{check(opt("p", "a")), True},
	})
	// the successful check stored p(a) once more
	require.Len(t, env.Entries("p"), 3)
}

func TestBlockScoping(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("p", "x"), True},
		{let("a"), True},
		{&BlockStmt{Stmts: []Statement{
			&LetStmt{Names: []string{"b"}, Facts: facts(opt("p", "a"))},
			check(opt("p", "a")),
		}}, True},
		{check(opt("p", "a")), Unknown},
		{let("b"), True},
	})
	require.Equal(t, []string{"OK! p(a)", "Unknown p(a)"}, env.Drain())
}

func TestContrapositiveSoundness(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("A", "x"), True},
		{def("B", "x"), True},
		{let("c"), True},
		{know(NewIf([]string{"x"}, facts(opt("A", "x")), facts(opt("B", "x")))), True},
		{check(Not(opt("A", "c"))), Unknown},
		{know(Not(opt("B", "c"))), True},
		{check(Not(opt("A", "c"))), True},
	})
}

func TestOrExpansion(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("A", "x"), True},
		{def("B", "x"), True},
		{let("c"), True},
		{know(NewOr(opt("A", "c"), opt("B", "c"))), True},
		{check(opt("B", "c")), Unknown},
		{know(Not(opt("A", "c"))), True},
		{check(opt("B", "c")), True},
	})
}

func TestProveByContradiction(t *testing.T) {
	env := NewScope(nil)
	ex := NewExecutor(DefaultOptions())
	runCases(t, ex, env, []execCase{
		{def("P", "x"), True},
		{def("Q", "x"), True},
		{def("R", "x"), True},
		{&LetStmt{Names: []string{"n"}, Facts: facts(Not(opt("P", "n")))}, True},
		{know(
			NewIf([]string{"m"}, facts(opt("R", "m")), facts(opt("P", "m"))),
			NewIf([]string{"m"}, facts(opt("Q", "m")), facts(opt("R", "m"))),
		), True},
		{check(opt("Q", "n")), Unknown},
		{&ProveByContradictionStmt{
			Goal:          Not(opt("Q", "n")),
			Block:         []Statement{check(opt("R", "n"))},
			Contradiction: opt("P", "n"),
		}, True},
		{check(Not(opt("Q", "n"))), True},
	})
	messages := env.Drain()
	require.Contains(t, messages, "[prove_by_contradiction] OK! R(n)")
	require.Contains(t, messages, "OK! not Q(n)")
}

func TestProveByContradictionWithoutLink(t *testing.T) {
	// nothing connects Q to R, so R(n) can't be shown under Q(n)
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("P", "x"), True},
		{def("Q", "x"), True},
		{def("R", "x"), True},
		{&LetStmt{Names: []string{"n"}, Facts: facts(Not(opt("P", "n")))}, True},
		{know(NewIf([]string{"m"}, facts(opt("R", "m")), facts(opt("P", "m")))), True},
		{check(opt("Q", "n")), Unknown},
		{&ProveByContradictionStmt{
			Goal:          Not(opt("Q", "n")),
			Block:         []Statement{check(opt("R", "n"))},
			Contradiction: opt("P", "n"),
		}, Unknown},
		{check(Not(opt("Q", "n"))), Unknown},
	})
	require.Contains(t, env.Drain(), "[prove_by_contradiction] Unknown R(n)")
}

func TestProveByContradictionFailures(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("P", "x"), True},
		{def("Q", "x"), True},
		{let("n"), True},
		// no contradiction to be found
		{&ProveByContradictionStmt{Goal: Not(opt("Q", "n")), Contradiction: opt("P", "n")}, Unknown},
		// implications have no negation
		{&ProveByContradictionStmt{
			Goal:          NewIf([]string{"x"}, facts(opt("P", "x")), facts(opt("Q", "x"))),
			Contradiction: opt("P", "n"),
		}, Error},
		{check(Not(opt("Q", "n"))), Unknown},
	})
}

func TestProve(t *testing.T) {
	env := NewScope(nil)
	ex := NewExecutor(DefaultOptions())
	goal := NewIf([]string{"x"}, facts(opt("human", "x")), facts(opt("mortal", "x")))
	runCases(t, ex, env, []execCase{
		{def("human", "x"), True},
		{def("animal", "x"), True},
		{def("mortal", "x"), True},
		{know(
			NewIf([]string{"x"}, facts(opt("human", "x")), facts(opt("animal", "x"))),
			NewIf([]string{"x"}, facts(opt("animal", "x")), facts(opt("mortal", "x"))),
		), True},
		{&ProveStmt{Goal: goal, Block: []Statement{check(opt("animal", "x"))}}, True},
		// x only lived in the proof
		{let("x"), True},
		{&LetStmt{Names: []string{"socrates"}, Facts: facts(opt("human", "socrates"))}, True},
		{check(opt("mortal", "socrates")), True},
	})
	messages := env.Drain()
	require.Equal(t, "[prove] OK! animal(x)", messages[0])
	require.Equal(t, "OK! if x: human(x) {mortal(x)}", messages[1])
	require.Len(t, env.Entries("mortal"), 3)
}

func TestProveFailures(t *testing.T) {
	env := NewScope(nil)
	ex := NewExecutor(DefaultOptions())
	goal := NewIf([]string{"x"}, facts(opt("human", "x")), facts(opt("mortal", "x")))
	runCases(t, ex, env, []execCase{
		{def("human", "x"), True},
		{def("mortal", "x"), True},
		// the block can't redeclare what the goal mentions
		{&ProveStmt{Goal: goal, Block: []Statement{let("x")}}, Error},
		{&ProveStmt{Goal: goal, Block: []Statement{def("mortal", "y")}}, Error},
		// nothing shows the goal
		{&ProveStmt{Goal: goal}, Unknown},
		// a failing step stops the proof
		{&ProveStmt{Goal: goal, Block: []Statement{check(opt("mortal", "x"))}}, Unknown},
		// nested blocks can't shadow the goal's names either
		{&ProveStmt{Goal: goal, Block: []Statement{&BlockStmt{Stmts: []Statement{let("x")}}}}, Error},
		{let("a"), True},
		// bound variables can't be declared twice
		{&ProveStmt{Goal: NewIf([]string{"a"}, nil, facts(opt("mortal", "a")))}, Error},
		{check(goal), Unknown},
	})
	require.Empty(t, env.Entries("mortal"))
}

func TestProveAtomicGoal(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("A", "x"), True},
		{def("B", "x"), True},
		{let("a"), True},
		{know(NewIf([]string{"x"}, facts(opt("A", "x")), facts(opt("B", "x")))), True},
		{&ProveStmt{Goal: opt("B", "a"), Block: []Statement{know(opt("A", "a"))}}, True},
		{check(opt("B", "a")), True},
		{check(opt("A", "a")), Unknown},
	})
}

func TestRedeclaration(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{let("a"), True},
		{let("a"), Error},
		{def("a", "x"), Error},
		{&BlockStmt{Stmts: []Statement{let("a")}}, Error},
		{&BlockStmt{Stmts: []Statement{let("b")}}, True},
		{&BlockStmt{Stmts: []Statement{let("b")}}, True},
		// nothing from a failed statement is kept
		{let("c", "a"), Error},
		{let("c"), True},
		{let("any"), Error},
	})
	require.Contains(t, env.Drain(), "a already declared as singleton")
}

func TestArityEnforcement(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("p", "x", "y"), True},
		{let("a", "b"), True},
		{know(opt("p", "a")), Error},
		{know(opt("p", "a", "b", "a")), Error},
		{know(opt("p", "a", "b")), True},
		{check(opt("p", "a")), Error},
		{know(opt("q", "a")), Error},
		{know(opt("p", "a", "z")), Error},
	})
	require.Len(t, env.Entries("p"), 1)
	messages := env.Drain()
	require.Contains(t, messages, "p takes 2 arguments; given 1")
	require.Contains(t, messages, "Error p(a)")
	require.Contains(t, messages, "operator not declared: q")
	require.Contains(t, messages, "variable not declared: z")
}

func TestDefinitions(t *testing.T) {
	env := NewScope(nil)
	opts := DefaultOptions()
	opts.TraceDef = true
	runCases(t, NewExecutor(opts), env, []execCase{
		{def("human", "x"), True},
		{def("mortal", "x"), True},
		{def("animal", "x"), True},
		{&DefStmt{Decl: &OperatorDecl{
			Name: "greek", Params: []string{"x"},
			Reqs: facts(opt("human", "x")), Kind: DefIf, Concls: facts(opt("mortal", "x")),
		}}, True},
		{&DefStmt{Decl: &OperatorDecl{
			Name: "person", Params: []string{"x"},
			Kind: DefIff, Concls: facts(opt("human", "x")),
		}}, True},
		{&DefStmt{Decl: &OperatorDecl{
			Name: "pet", Params: []string{"x"},
			Kind: DefOnlyIf, Concls: facts(opt("animal", "x")),
		}}, True},
		{&LetStmt{Names: []string{"a", "b", "c"}, Facts: facts(opt("greek", "a"), opt("human", "a"), opt("human", "b"), opt("animal", "c"))}, True},
		{check(opt("mortal", "a")), True},
		{check(opt("person", "b")), True},
		{check(opt("pet", "c")), True},
		{check(opt("mortal", "b")), Unknown},
	})
	require.Contains(t, env.Drain(), "[def] def greek(x): human(x) => {mortal(x)}")
}

func TestHave(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("p", "x", "y", "z"), True},
		{let("a", "b"), True},
		{know(opt("p", "a", "b", "exists")), True},
		{&HaveStmt{Names: []string{"c"}, Facts: facts(opt("p", "a", "b", "exists"))}, True},
		{check(opt("p", "a", "b", "c")), True},
		// nothing known about b, a
		{&HaveStmt{Names: []string{"d"}, Facts: facts(opt("p", "b", "a", "exists"))}, Unknown},
		{&HaveStmt{Names: []string{"d", "e"}, Facts: facts(opt("p", "a", "b", "exists"))}, Error},
		{&HaveStmt{Names: []string{"c"}, Facts: facts(opt("p", "a", "b", "exists"))}, Error},
		{let("d", "e"), True},
	})
}

func TestLetsAndAliases(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("even", "x"), True},
		{&LetsStmt{Name: "n", Pattern: "[0-9]+", Facts: facts(opt("even", "2"))}, True},
		{check(opt("even", "2")), True},
		{check(opt("even", "4")), Unknown},
		{check(opt("even", "two")), Error},
		{&LetsStmt{Name: "bad", Pattern: "("}, Error},
		{&LetAliasStmt{Name: "two", Targets: Singletons("2")}, True},
		{check(opt("even", "two")), True},
		{&LetAliasStmt{Name: "three", Targets: Singletons("nope")}, Error},
	})
}

func TestLiteralOperators(t *testing.T) {
	env := NewScope(nil)
	resolver := FuncResolver{}
	resolver.Register("arith", "plus", func(args []Symbol) (Symbol, error) {
		sum := 0
		for _, arg := range args {
			n, err := strconv.Atoi(arg.String())
			if err != nil {
				return nil, ErrNoLiteral
			}
			sum += n
		}
		return NewSingleton(strconv.Itoa(sum)), nil
	})
	resolver.Register("arith", "broken", func([]Symbol) (Symbol, error) {
		return nil, nil
	})
	ex := NewExecutor(DefaultOptions())
	ex.Literals = resolver

	runCases(t, ex, env, []execCase{
		{def("even", "x"), True},
		{&LetsStmt{Name: "n", Pattern: "[0-9]+"}, True},
		{&DefLiteralStmt{Decl: &LiteralDecl{Name: "plus", Path: "arith", Func: "plus", Params: []string{"x", "y"}}}, True},
		{&DefLiteralStmt{Decl: &LiteralDecl{Name: "broken", Path: "arith", Func: "broken"}}, True},
		{know(NewOpt("even", NewLiteralCall("plus", Singletons("1", "3")...))), True},
		{check(opt("even", "4")), True},
		{check(NewOpt("even", NewLiteralCall("plus", Singletons("x", "3")...))), Error},
		{check(NewOpt("even", NewLiteralCall("plus", Singletons("1")...))), Error},
		{check(NewOpt("even", NewLiteralCall("broken"))), Error},
		{check(NewOpt("even", NewLiteralCall("minus", Singletons("1", "3")...))), Error},
		// definitions resolve their literals too
		{&DefStmt{Decl: &OperatorDecl{
			Name: "six", Kind: DefIf,
			Concls: facts(NewOpt("even", NewLiteralCall("plus", Singletons("3", "3")...))),
		}}, True},
		{&DefCompositeStmt{Decl: &CompositeDecl{
			Name: "sq", Params: []string{"x"},
			Facts: facts(NewOpt("even", NewLiteralCall("plus", Singletons("1", "1")...))),
		}}, True},
		{check(opt("even", "6")), Unknown},
		{know(opt("six")), True},
		{check(opt("even", "6")), True},
	})
	messages := env.Drain()
	require.Contains(t, messages, "parse error: @broken{} produced neither a symbol nor ErrNoLiteral")
	require.Contains(t, messages, "resolving @plus{x, 3}: "+ErrNoLiteral.Error())
}

func TestFuncResolverMissing(t *testing.T) {
	_, err := FuncResolver{}.Resolve("arith", "plus", nil)
	require.EqualError(t, err, "no literal function plus in arith")
	require.False(t, errors.Is(err, ErrNoLiteral))
}

func TestTraceAndObserver(t *testing.T) {
	env := NewScope(nil)
	observer := &recordingObserver{}
	ex := NewExecutor(Options{TraceStore: true, TraceLet: true})
	ex.Observer = observer

	runCases(t, ex, env, []execCase{
		{def("p", "x"), True},
		{&LetStmt{Names: []string{"a"}, Facts: facts(opt("p", "a"))}, True},
		{check(opt("p", "b")), Error},
	})
	require.Equal(t, []string{"def", "let", "fact"}, observer.kinds)
	require.Equal(t, []Verdict{True, True, Error}, observer.verdicts)
	require.Equal(t, []string{
		"[let] let a: p(a);",
		"[fact] p(a)",
		"variable not declared: b",
		"Error p(b)",
	}, env.Drain())
}

func TestNamedKnowns(t *testing.T) {
	env := NewScope(nil)
	mortality := NewIf([]string{"x"}, facts(opt("human", "x")), facts(opt("mortal", "x")))
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("human", "x"), True},
		{def("mortal", "x"), True},
		{&LetStmt{Names: []string{"socrates", "plato"}, Facts: facts(opt("human", "socrates"))}, True},
		{&KnowStmt{Names: []string{"mortality"}, Facts: facts(mortality)}, True},
		{&KnowStmt{Names: []string{"mortality"}, Facts: facts(mortality)}, Error},
		{&ByStmt{Uses: []*KnownUse{{Name: "mortality", Args: Singletons("socrates")}}}, True},
		// requirements must hold for the arguments
		{&ByStmt{Uses: []*KnownUse{{Name: "mortality", Args: Singletons("plato")}}}, Unknown},
		{&ByStmt{Uses: []*KnownUse{{Name: "mortality", Args: Singletons("socrates", "plato")}}}, Error},
		{&ByStmt{Uses: []*KnownUse{{Name: "mortality", Args: Singletons("zeus")}}}, Error},
		{&ByStmt{Uses: []*KnownUse{{Name: "immortality", Args: Singletons("socrates")}}}, Error},
		// atomic knowns take no arguments
		{&KnowStmt{Names: []string{"", "wise"}, Facts: facts(opt("human", "socrates"), opt("human", "plato"))}, True},
		{&ByStmt{Uses: []*KnownUse{{Name: "wise"}}}, True},
		{&ByStmt{Uses: []*KnownUse{{Name: "wise", Args: Singletons("plato")}}}, Error},
	})
	// the implication itself, then what `by` stored for socrates
	require.Len(t, env.Entries("mortal"), 2)
	messages := env.Drain()
	require.Contains(t, messages, "mortality already declared as known fact")
	require.Contains(t, messages, "OK! [by] mortality(socrates)")
	require.Contains(t, messages, "Unknown human(plato)")
	require.Contains(t, messages, "mortality takes 1 arguments; given 2")
	require.Contains(t, messages, "no known fact named immortality")
	require.Contains(t, messages, "wise takes 0 arguments; given 1")

	known, ok := env.LookupKnown("mortality")
	require.True(t, ok)
	require.Equal(t, mortality.String(), known.String())
}

func TestPostfixProve(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("A", "x"), True},
		{def("B", "x"), True},
		{let("a"), True},
		{know(NewIf([]string{"x"}, facts(opt("A", "x")), facts(opt("B", "x")))), True},
		{&PostfixProveStmt{Facts: facts(opt("B", "a")), Block: []Statement{know(opt("A", "a")), check(opt("B", "a"))}}, True},
		{check(opt("B", "a")), True},
		{check(opt("A", "a")), Unknown},
		{&PostfixProveStmt{Facts: facts(opt("A", "a"))}, Unknown},
		{&PostfixProveStmt{Facts: facts(opt("A", "a")), Block: []Statement{def("A", "y")}}, Error},
	})
	require.Equal(t, []string{
		"[prove] OK! B(a)",
		"OK! B(a)",
		"OK! B(a)",
		"Unknown A(a)",
		"Unknown A(a)",
		"proof of A(a) can't declare A, which the goal uses",
	}, env.Drain())
}

func TestReturn(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("A", "x"), True},
		{def("B", "x"), True},
		{let("a"), True},
		{know(NewIf([]string{"x"}, facts(opt("A", "x")), facts(opt("B", "x")))), True},
		{&BlockStmt{Stmts: []Statement{know(opt("A", "a")), &ReturnStmt{Facts: facts(opt("B", "a"))}}}, True},
		{check(opt("B", "a")), True},
		{check(opt("A", "a")), Unknown},
		{&ReturnStmt{Facts: facts(opt("B", "a"))}, Error},
		{&BlockStmt{Stmts: []Statement{
			&LetStmt{Names: []string{"c"}, Facts: facts(opt("A", "c"))},
			&ReturnStmt{Facts: facts(opt("B", "c"))},
		}}, Error},
		// an unproven return doesn't stop the block
		{&BlockStmt{Stmts: []Statement{&ReturnStmt{Facts: facts(opt("A", "a"))}}}, True},
		{check(opt("A", "a")), Unknown},
	})
	messages := env.Drain()
	require.Contains(t, messages, "can't return B(a) outside a block")
	require.Contains(t, messages, "can't return B(c): c is declared in this block")
}

func TestClear(t *testing.T) {
	env := NewScope(nil)
	runCases(t, NewExecutor(DefaultOptions()), env, []execCase{
		{def("A", "x"), True},
		{let("a"), True},
		{know(opt("A", "a")), True},
		{&BlockStmt{Stmts: []Statement{let("b"), &ClearStmt{}, let("b"), check(opt("A", "a"))}}, True},
		{&ClearStmt{}, True},
		{check(opt("A", "a")), Error},
		{let("a"), True},
	})
	require.Zero(t, env.EntryCount())
}

type mapLoader map[string][]Statement

func (l mapLoader) Load(path string) ([]Statement, error) {
	stmts, ok := l[path]
	if !ok {
		return nil, errors.Errorf("no such file: %s", path)
	}
	return stmts, nil
}

func TestRun(t *testing.T) {
	env := NewScope(nil)
	ex := NewExecutor(DefaultOptions())
	runCases(t, ex, env, []execCase{
		{&RunStmt{Path: "defs.lx"}, Error},
	})

	ex.Loader = mapLoader{
		"defs.lx": {def("A", "x"), let("a"), know(opt("A", "a"))},
		"loop.lx": {&RunStmt{Path: "loop.lx"}},
		"bad.lx":  {def("B", "x"), check(opt("B", "zz"))},
	}
	runCases(t, ex, env, []execCase{
		{&RunStmt{Path: "defs.lx"}, True},
		{check(opt("A", "a")), True},
		{&RunStmt{Path: "missing.lx"}, Error},
		{&RunStmt{Path: "loop.lx"}, Error},
		// the whole file is rolled back
		{&RunStmt{Path: "bad.lx"}, Error},
		{def("B", "x"), True},
	})
	messages := env.Drain()
	require.Contains(t, messages, "can't run defs.lx: no loader configured")
	require.Contains(t, messages, "[run] defs.lx")
	require.Contains(t, messages, "running missing.lx: no such file: missing.lx")
	require.Contains(t, messages, "can't run loop.lx: it is already running")
}
