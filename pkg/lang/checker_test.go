package lang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckAtomic(t *testing.T) {
	env := newTestScope(t)
	require.NoError(t, Store(env, opt("A", "a"), nil, true))
	require.NoError(t, Store(env, Not(opt("B", "a")), nil, true))
	require.NoError(t, Store(env, opt("p", "a", "b"), nil, true))
	// for every x, p(x, c)
	require.NoError(t, Store(env, NewIf([]string{"x"}, nil, facts(opt("p", "x", "c"))), nil, true))

	testCases := []struct {
		fact    Fact
		verdict Verdict
	}{
		{opt("A", "a"), True},
		{Not(opt("A", "a")), False},
		{opt("A", "b"), Unknown},
		{opt("B", "a"), False},
		{Not(opt("B", "a")), True},
		{opt("p", "a", "b"), True},
		{opt("p", "b", "a"), Unknown},
		{opt("p", "b", "c"), True},
		{opt("p", "a", "any"), True},
		{opt("p", "any", "a"), Unknown},
		{opt("q", "a"), Error},
		{opt("A", "a", "b"), Error},
	}

	for idx, testCase := range testCases {
		require.Equal(t, testCase.verdict, Check(env, testCase.fact), "case %d: %s", idx, testCase.fact)
	}
}

func TestCheckChaining(t *testing.T) {
	env := newTestScope(t)
	// A(x) => B(x) => C(x)
	require.NoError(t, Store(env, NewIf([]string{"x"}, facts(opt("A", "x")), facts(opt("B", "x"))), nil, true))
	require.NoError(t, Store(env, NewIf([]string{"x"}, facts(opt("B", "x")), facts(opt("C", "x"))), nil, true))
	require.NoError(t, Store(env, opt("A", "a"), nil, true))

	require.Equal(t, True, Check(env, opt("C", "a")))
	require.Equal(t, Unknown, Check(env, opt("C", "b")))

	// contrapositive
	require.NoError(t, Store(env, Not(opt("C", "b")), nil, true))
	require.Equal(t, True, Check(env, Not(opt("B", "b"))))
	require.Equal(t, True, Check(env, Not(opt("A", "b"))))

	// implication queries are checked under their hypotheses
	require.Equal(t, True, Check(env, NewIf([]string{"y"}, facts(opt("A", "y")), facts(opt("C", "y")))))
	require.Equal(t, Unknown, Check(env, NewIf([]string{"y"}, facts(opt("C", "y")), facts(opt("A", "y")))))
	require.Equal(t, Unknown, Check(env, NewIff([]string{"y"}, facts(opt("A", "y")), facts(opt("C", "y")))))
	// bound names that are already declared get renamed
	require.Equal(t, True, Check(env, NewIf([]string{"a"}, facts(opt("A", "a")), facts(opt("B", "a")))))
}

func TestCheckCycle(t *testing.T) {
	env := newTestScope(t)
	require.NoError(t, Store(env, NewIff([]string{"x"}, facts(opt("A", "x")), facts(opt("B", "x"))), nil, true))

	require.Equal(t, Unknown, Check(env, opt("A", "a")))

	require.NoError(t, Store(env, opt("B", "a"), nil, true))
	require.Equal(t, True, Check(env, opt("A", "a")))
}

func TestCheckDepthLimit(t *testing.T) {
	env := newTestScope(t)
	require.NoError(t, Store(env, NewIf([]string{"x"}, facts(opt("A", "x")), facts(opt("B", "x"))), nil, true))
	require.NoError(t, Store(env, opt("A", "a"), nil, true))

	checker := NewChecker(Options{MaxCheckDepth: 1}, nil)
	require.Equal(t, Unknown, checker.Check(env, opt("B", "a")))
	require.Contains(t, env.Drain(), "[depth] gave up on A(a) after 1 nested checks")

	require.Equal(t, True, NewChecker(Options{MaxCheckDepth: 2}, nil).Check(env, opt("B", "a")))
}

func TestCheckCombinators(t *testing.T) {
	env := newTestScope(t)
	require.NoError(t, Store(env, opt("A", "a"), nil, true))
	require.NoError(t, Store(env, Not(opt("B", "a")), nil, true))
	require.NoError(t, Store(env, NewOr(opt("A", "b"), opt("B", "b")), nil, true))

	testCases := []struct {
		fact    Fact
		verdict Verdict
	}{
		{NewOr(opt("A", "a"), opt("C", "a")), True},
		{NewOr(opt("C", "a"), opt("A", "a")), True},
		{NewOr(opt("B", "a"), Not(opt("A", "a"))), False},
		{NewOr(opt("C", "a"), opt("C", "b")), Unknown},
		{NewOr(opt("A", "b"), opt("B", "b")), True},
		{NewOr(opt("B", "b"), opt("A", "b")), True},
		{NewAnd(opt("A", "a"), Not(opt("B", "a"))), True},
		{NewAnd(opt("A", "a"), opt("B", "a")), False},
		{NewAnd(opt("A", "a"), opt("C", "a")), Unknown},
		{&AndFact{Left: opt("A", "a"), Right: opt("B", "a"), Negated: true}, True},
		{&OrFact{Left: opt("B", "a"), Right: Not(opt("A", "a")), Negated: true}, True},
		{NewAnd(opt("A", "a"), opt("q", "a")), Error},
		{NewBuiltin(IsPropertyBuiltin, "A"), True},
		{NewBuiltin(IsPropertyBuiltin, "a"), False},
		{&BuiltinFact{Name: IsPropertyBuiltin, Args: []string{"a"}, Negated: true}, True},
		{NewBuiltin(IsPropertyBuiltin), Error},
		{NewBuiltin("no_such_builtin", "A"), Error},
	}

	for idx, testCase := range testCases {
		require.Equal(t, testCase.verdict, Check(env, testCase.fact), "case %d: %s", idx, testCase.fact)
	}
}

func TestCheckAliasesAndComposites(t *testing.T) {
	env := newTestScope(t)
	require.NoError(t, env.DeclareAlias("k", Singletons("a")))
	require.NoError(t, env.DeclareComposite(&CompositeDecl{Name: "f", Params: []string{"x"}}))
	require.NoError(t, Store(env, opt("A", "a"), nil, true))
	require.NoError(t, Store(env, NewOpt("B", NewComposite("f", NewSingleton("a"))), nil, true))
	// for every x, C(f(x))
	require.NoError(t, Store(env, NewIf([]string{"x"}, nil, facts(NewOpt("C", NewComposite("f", NewSingleton("x"))))), nil, true))

	require.Equal(t, True, Check(env, opt("A", "k")))
	require.Equal(t, True, Check(env, NewOpt("B", NewComposite("f", NewSingleton("a")))))
	require.Equal(t, True, Check(env, NewOpt("B", NewComposite("f", NewSingleton("k")))))
	require.Equal(t, Unknown, Check(env, NewOpt("B", NewComposite("f", NewSingleton("b")))))
	require.Equal(t, Unknown, Check(env, NewOpt("B", NewComposite("g", NewSingleton("a")))))
	require.Equal(t, True, Check(env, NewOpt("C", NewComposite("f", NewSingleton("b")))))
	require.Equal(t, Unknown, Check(env, opt("C", "b")))
}

func TestCheckRepeatedFreeVar(t *testing.T) {
	env := newTestScope(t)
	// for every x, p(x, x)
	require.NoError(t, Store(env, NewIf([]string{"x"}, nil, facts(opt("p", "x", "x"))), nil, true))

	require.Equal(t, True, Check(env, opt("p", "a", "a")))
	require.Equal(t, Unknown, Check(env, opt("p", "a", "b")))
}

func TestCheckScopeWalk(t *testing.T) {
	root := newTestScope(t)
	require.NoError(t, Store(root, opt("A", "a"), nil, true))

	child := root.Child()
	require.NoError(t, child.DeclareOperator(&OperatorDecl{Name: "D", Params: []string{"x"}}))
	require.NoError(t, Store(child, opt("D", "a"), nil, true))
	require.NoError(t, Store(child, opt("B", "a"), nil, true))

	grandchild := child.Child()
	require.Equal(t, True, Check(grandchild, opt("A", "a")))
	require.Equal(t, True, Check(grandchild, opt("B", "a")))
	require.Equal(t, True, Check(grandchild, opt("D", "a")))

	require.Equal(t, Error, Check(root, opt("D", "a")))
	require.Equal(t, Unknown, Check(root, opt("B", "a")))
}

func TestCheckWarnInconsistent(t *testing.T) {
	env := newTestScope(t)
	require.NoError(t, Store(env, opt("A", "a"), nil, true))
	require.NoError(t, Store(env, Not(opt("A", "a")), nil, true))

	require.Equal(t, True, Check(env, opt("A", "a")))
	require.Empty(t, env.Drain())

	checker := NewChecker(Options{WarnInconsistent: true}, nil)
	require.Equal(t, True, checker.Check(env, opt("A", "a")))
	require.Equal(t, []string{"[warning] inconsistent facts about A(a)"}, env.Drain())

	require.Equal(t, Unknown, checker.Check(env, opt("A", "b")))
}

func TestVisibleEntries(t *testing.T) {
	entry := &StoredEntry{Args: Singletons("a", "x"), Layers: []RequirementLayer{{Vars: []string{"x"}}}}
	require.True(t, visible(entry, map[string]int{"a": 1, "x": 2}))
	require.False(t, visible(entry, map[string]int{"a": 2}))
}

func TestCheckTraceKeepsNestedMessages(t *testing.T) {
	env := newTestScope(t)
	checker := NewChecker(Options{TraceCheck: true}, nil)

	require.Equal(t, Unknown, checker.Check(env, NewOr(opt("A", "a"), opt("B", "a"))))
	require.Equal(t, []string{
		"[check] A(a): unknown",
		"[check] B(a): unknown",
		// right side again, assuming not A(a)
		"[check] B(a): unknown",
		"[check] (A(a) or B(a)): unknown",
	}, env.Drain())
}

func TestCheckRequirementError(t *testing.T) {
	env := newTestScope(t)
	// the requirement can never be decided
	broken := NewIf([]string{"x"}, facts(NewBuiltin(IsPropertyBuiltin)), facts(opt("A", "x")))
	require.NoError(t, Store(env, broken, nil, true))

	require.Equal(t, Unknown, Check(env, opt("A", "a")))
	require.Equal(t, []string{
		"is_property takes 1 arguments; given 0",
		"[skip] if x: is_property() {A(x)}: requirement is_property() is an error",
	}, env.Drain())
}
