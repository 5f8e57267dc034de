package lang

import (
	"fmt"

	"github.com/pkg/errors"
)

type Verdict int

const (
	Unknown Verdict = iota
	True
	False
	Error
)

func (v Verdict) String() string {
	switch v {
	case True:
		return "true"
	case False:
		return "false"
	case Error:
		return "error"
	}
	return "unknown"
}

// Options are the engine settings a session is started with.
type Options struct {
	TraceStore       bool `yaml:"trace_store" json:"trace_store"`
	TraceDef         bool `yaml:"trace_def" json:"trace_def"`
	TraceLet         bool `yaml:"trace_let" json:"trace_let"`
	TraceCheck       bool `yaml:"trace_check" json:"trace_check"`
	MaxCheckDepth    int  `yaml:"max_check_depth" json:"max_check_depth"`
	WarnInconsistent bool `yaml:"warn_inconsistent" json:"warn_inconsistent"`
}

const defaultMaxCheckDepth = 128

func DefaultOptions() Options {
	return Options{MaxCheckDepth: defaultMaxCheckDepth}
}

func (o Options) maxDepth() int {
	if o.MaxCheckDepth <= 0 {
		return defaultMaxCheckDepth
	}
	return o.MaxCheckDepth
}

// Builtins

type BuiltinResolver interface {
	Resolve(env *Scope, fact *BuiltinFact) (bool, error)
}

const IsPropertyBuiltin = "is_property"

type defaultBuiltins struct{}

var _ BuiltinResolver = defaultBuiltins{}

func (defaultBuiltins) Resolve(env *Scope, fact *BuiltinFact) (bool, error) {
	switch fact.Name {
	case IsPropertyBuiltin:
		if len(fact.Args) != 1 {
			return false, &ArityMismatchError{Name: fact.Name, Wanted: 1, Got: len(fact.Args)}
		}
		_, _, ok := env.LookupOperator(fact.Args[0])
		return ok, nil
	}
	return false, errors.Errorf("unknown builtin: %s", fact.Name)
}

// Checker

// Checker decides facts against what a scope chain knows, by backward chaining
// over stored entries. It keeps per-derivation state and isn't safe for
// concurrent use.
type Checker struct {
	opts     Options
	builtins BuiltinResolver

	inProgress map[string]bool
	depth      int
}

func NewChecker(opts Options, builtins BuiltinResolver) *Checker {
	if builtins == nil {
		builtins = defaultBuiltins{}
	}
	return &Checker{
		opts:       opts,
		builtins:   builtins,
		inProgress: map[string]bool{},
	}
}

// Check is convenience for a one-off check with default options.
func Check(env *Scope, fact Fact) Verdict {
	return NewChecker(DefaultOptions(), nil).Check(env, fact)
}

func (c *Checker) Check(env *Scope, fact Fact) Verdict {
	key := fact.String()
	if c.inProgress[key] {
		if c.opts.TraceCheck {
			env.Recordf("[cycle] %s depends on itself", key)
		}
		return Unknown
	}
	if c.depth >= c.opts.maxDepth() {
		env.Recordf("[depth] gave up on %s after %d nested checks", key, c.depth)
		return Unknown
	}
	c.inProgress[key] = true
	c.depth++
	defer func() {
		delete(c.inProgress, key)
		c.depth--
	}()

	verdict := c.check(env, fact)
	if c.opts.TraceCheck {
		env.Recordf("[check] %s: %s", key, verdict)
	}
	return verdict
}

func (c *Checker) check(env *Scope, fact Fact) Verdict {
	switch f := fact.(type) {
	case *OptFact:
		return c.checkOpt(env, f)
	case *LogicFact:
		return c.checkLogic(env, f)
	case *OrFact:
		return c.checkOr(env, f)
	case *AndFact:
		return c.checkAnd(env, f)
	case *BuiltinFact:
		ok, err := c.builtins.Resolve(env, f)
		if err != nil {
			env.Record(err.Error())
			return Error
		}
		if ok != f.Negated {
			return True
		}
		return False
	}
	env.Recordf("can't check %T", fact)
	return Error
}

// Atomic facts

func (c *Checker) checkOpt(env *Scope, q *OptFact) Verdict {
	decl, level, ok := env.LookupOperator(q.Name)
	if !ok {
		env.Record((&UndeclaredOperatorError{Name: q.Name}).Error())
		return Error
	}
	if len(q.Args) != decl.Arity() {
		env.Record((&ArityMismatchError{Name: q.Name, Wanted: decl.Arity(), Got: len(q.Args)}).Error())
		return Error
	}

	// how many scopes on the way up declare each query variable
	counts := map[string]int{}
	for _, name := range singletonsOf(q.Args) {
		counts[name] = 0
	}

	verdict := Unknown
	decided := false
	cur := env
	for hop := 0; hop <= level && cur != nil; hop++ {
		for name := range counts {
			if cur.bindsSingletonHere(name) {
				counts[name]++
			}
		}
		for _, entry := range cur.facts[q.Name] {
			if !visible(entry, counts) {
				continue
			}
			if decided {
				if entry.IsLiteral() && c.tryEntry(env, q, entry) == opposite(verdict) {
					env.Recordf("[warning] inconsistent facts about %s", q)
					return verdict
				}
				continue
			}
			v := c.tryEntry(env, q, entry)
			if v == True || v == False {
				if !c.opts.WarnInconsistent {
					return v
				}
				verdict, decided = v, true
			}
		}
		cur = cur.parent
	}
	return verdict
}

// visible hides entries about a name that was declared more than once on the
// way up, since they are about a different variable.
func visible(entry *StoredEntry, counts map[string]int) bool {
	for _, name := range entry.FixedVars() {
		if counts[name] > 1 {
			return false
		}
	}
	return true
}

func opposite(v Verdict) Verdict {
	switch v {
	case True:
		return False
	case False:
		return True
	}
	return v
}

func (c *Checker) tryEntry(env *Scope, q *OptFact, entry *StoredEntry) Verdict {
	m := newMatcher(env, entry.freeVarSet())
	if !m.matchAll(entry.Args, q.Args) {
		return Unknown
	}
	if entry.IsLiteral() {
		if entry.Negated == q.Negated {
			return True
		}
		return False
	}
	if entry.Negated != q.Negated {
		return Unknown
	}
	for _, layer := range entry.Layers {
		for _, req := range layer.Reqs {
			instance := req.Substitute(m.bindings)
			switch c.Check(env, instance) {
			case True:
				continue
			case Error:
				env.Recordf("[skip] %s: requirement %s is an error", entry.AsFact(q.Name), instance)
			}
			return Unknown
		}
	}
	return True
}

// Implications

func (c *Checker) checkLogic(env *Scope, f *LogicFact) Verdict {
	verdict := c.assume(env, f.Vars, f.Reqs, f.Concls)
	if verdict != True || f.Kind == If {
		return verdict
	}
	return c.assume(env, f.Vars, f.Concls, f.Reqs)
}

// assume checks goals in a throwaway scope where vars are declared and hyps are
// known. Vars that are already bound get fresh names.
func (c *Checker) assume(env *Scope, vars []string, hyps []Fact, goals []Fact) Verdict {
	scope := env.Child()
	defer scope.flushTo(env, "")

	renames := Bindings{}
	for _, v := range vars {
		name := v
		if _, taken := env.lookupName(v); taken || isReserved(v) {
			name = freshName(env, v)
			renames[v] = NewSingleton(name)
		}
		if err := scope.DeclareSingleton(name); err != nil {
			scope.Record(err.Error())
			return Error
		}
	}
	for _, hyp := range hyps {
		if err := Store(scope, hyp.Substitute(renames), nil, true); err != nil {
			scope.Record(err.Error())
			return Error
		}
	}
	for _, goal := range goals {
		switch c.Check(scope, goal.Substitute(renames)) {
		case True:
			continue
		case Error:
			return Error
		default:
			return Unknown
		}
	}
	return True
}

func freshName(env *Scope, base string) string {
	for idx := 1; ; idx++ {
		name := fmt.Sprintf("%s'%d", base, idx)
		if _, taken := env.lookupName(name); !taken {
			return name
		}
	}
}

// Combinators

func (c *Checker) checkOr(env *Scope, f *OrFact) Verdict {
	if f.Negated {
		conj, err := deMorgan(f.Left, f.Right, false)
		if err != nil {
			env.Record(err.Error())
			return Error
		}
		return c.Check(env, conj)
	}

	left := c.Check(env, f.Left)
	if left == True || left == Error {
		return left
	}
	right := c.Check(env, f.Right)
	if right == True || right == Error {
		return right
	}
	if left == False && right == False {
		return False
	}

	// not left implies right
	negLeft, err := f.Left.Negate()
	if err != nil {
		return Unknown
	}
	scope := env.Child()
	defer scope.flushTo(env, "")
	if err := Store(scope, negLeft, nil, true); err != nil {
		scope.Record(err.Error())
		return Unknown
	}
	if c.Check(scope, f.Right) == True {
		return True
	}
	return Unknown
}

func (c *Checker) checkAnd(env *Scope, f *AndFact) Verdict {
	if f.Negated {
		disj, err := deMorgan(f.Left, f.Right, true)
		if err != nil {
			env.Record(err.Error())
			return Error
		}
		return c.Check(env, disj)
	}

	left := c.Check(env, f.Left)
	if left == Error {
		return Error
	}
	right := c.Check(env, f.Right)
	if right == Error {
		return Error
	}
	switch {
	case left == True && right == True:
		return True
	case left == False || right == False:
		return False
	}
	return Unknown
}
