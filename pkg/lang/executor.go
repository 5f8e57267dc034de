package lang

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Observer is told about every top-level statement an Executor runs.
type Observer interface {
	StatementExecuted(kind string, verdict Verdict, elapsed time.Duration)
}

// Executor runs statements against a scope. A session owns one executor and
// drives it from a single goroutine.
type Executor struct {
	Options  Options
	Builtins BuiltinResolver
	Literals LiteralResolver
	Observer Observer
	// Loader reads the files named by `run`; nil disables it.
	Loader Loader

	running map[string]bool
}

// Loader turns a path into the statements of that file.
type Loader interface {
	Load(path string) ([]Statement, error)
}

func NewExecutor(opts Options) *Executor {
	return &Executor{
		Options:  opts,
		Builtins: defaultBuiltins{},
	}
}

// Exec runs a top-level statement. Its declarations and facts reach env only if
// it doesn't end in Error; its messages always do.
func (ex *Executor) Exec(env *Scope, stmt Statement) Verdict {
	start := time.Now()
	var verdict Verdict
	if _, ok := stmt.(*ClearStmt); ok {
		// clears the scope itself, not a staging copy of it
		verdict = ex.exec(env, stmt)
	} else {
		staging := env.Child()
		verdict = ex.exec(staging, stmt)
		if verdict == Error {
			staging.flushTo(env, "")
		} else {
			staging.commit()
		}
	}
	if ex.Observer != nil {
		ex.Observer.StatementExecuted(stmt.Kind(), verdict, time.Since(start))
	}
	return verdict
}

func (ex *Executor) exec(env *Scope, stmt Statement) Verdict {
	elaborated, err := ex.elaborate(env, stmt)
	if err != nil {
		env.Record(err.Error())
		env.Record(verdictMessage(Error, stmt))
		return Error
	}
	checker := NewChecker(ex.Options, ex.Builtins)

	switch s := elaborated.(type) {
	case *LetStmt:
		return ex.execLet(env, s)
	case *LetsStmt:
		return ex.execLets(env, s)
	case *LetAliasStmt:
		return ex.execLetAlias(env, s)
	case *KnowStmt:
		return ex.execKnow(env, s)
	case *DefStmt:
		return ex.execDef(env, s)
	case *DefCompositeStmt:
		return ex.execDefComposite(env, s)
	case *DefLiteralStmt:
		if err := env.DeclareLiteral(s.Decl); err != nil {
			return fail(env, err)
		}
		return True
	case *ProveStmt:
		return ex.execProve(env, s, checker)
	case *ProveByContradictionStmt:
		return ex.execProveByContradiction(env, s, checker)
	case *HaveStmt:
		return ex.execHave(env, s, checker)
	case *PostfixProveStmt:
		return ex.execPostfixProve(env, s, checker)
	case *ByStmt:
		return ex.execBy(env, s, checker)
	case *BlockStmt:
		return ex.execBlock(env, s)
	case *ReturnStmt:
		return ex.execReturn(env, s, checker)
	case *ClearStmt:
		env.reset()
		return True
	case *RunStmt:
		return ex.execRun(env, s)
	case *FactStmt:
		return ex.execFacts(env, s, checker)
	}
	env.Recordf("unknown statement %T", stmt)
	return Error
}

// execAll runs stmts in order, stopping at the first one that isn't True.
func (ex *Executor) execAll(env *Scope, stmts []Statement) Verdict {
	for _, stmt := range stmts {
		if verdict := ex.exec(env, stmt); verdict != True {
			return verdict
		}
	}
	return True
}

func fail(env *Scope, err error) Verdict {
	env.Record(err.Error())
	return Error
}

// verdictMessage is the line reported for a checked fact.
func verdictMessage(verdict Verdict, subject fmt.Stringer) string {
	switch verdict {
	case True:
		return "OK! " + subject.String()
	case False:
		return "False " + subject.String()
	case Error:
		return "Error " + subject.String()
	}
	return "Unknown " + subject.String()
}

// storeFact stores with the executor's tracing.
func (ex *Executor) storeFact(env *Scope, fact Fact) error {
	entries, err := store(env, fact, nil, true)
	if err != nil {
		return err
	}
	if ex.Options.TraceStore {
		for _, entry := range entries {
			env.Recordf("[fact] %s", entry)
		}
	}
	return nil
}

func (ex *Executor) storeFacts(env *Scope, facts []Fact) error {
	for _, fact := range facts {
		if err := validateFact(env, fact, nil); err != nil {
			return err
		}
	}
	for _, fact := range facts {
		if err := ex.storeFact(env, fact); err != nil {
			return err
		}
	}
	return nil
}

// Declarations

func (ex *Executor) execLet(env *Scope, s *LetStmt) Verdict {
	for _, name := range s.Names {
		if err := env.DeclareSingleton(name); err != nil {
			return fail(env, err)
		}
	}
	if ex.Options.TraceLet {
		env.Recordf("[let] %s", s)
	}
	if err := ex.storeFacts(env, s.Facts); err != nil {
		return fail(env, err)
	}
	return True
}

func (ex *Executor) execLets(env *Scope, s *LetsStmt) Verdict {
	decl, err := NewPatternDecl(s.Name, s.Pattern)
	if err != nil {
		return fail(env, err)
	}
	if err := env.DeclarePattern(decl); err != nil {
		return fail(env, err)
	}
	if ex.Options.TraceLet {
		env.Recordf("[let] %s", s)
	}
	if err := ex.storeFacts(env, s.Facts); err != nil {
		return fail(env, err)
	}
	return True
}

func (ex *Executor) execLetAlias(env *Scope, s *LetAliasStmt) Verdict {
	for _, target := range s.Targets {
		if err := validateSymbol(env, target, nil); err != nil {
			return fail(env, err)
		}
	}
	if err := env.DeclareAlias(s.Name, s.Targets); err != nil {
		return fail(env, err)
	}
	if ex.Options.TraceLet {
		env.Recordf("[let] %s", s)
	}
	return True
}

func (ex *Executor) execKnow(env *Scope, s *KnowStmt) Verdict {
	for idx, fact := range s.Facts {
		if name := s.name(idx); name != "" {
			if err := env.DeclareKnown(name, fact); err != nil {
				return fail(env, err)
			}
		}
	}
	if err := ex.storeFacts(env, s.Facts); err != nil {
		return fail(env, err)
	}
	return True
}

type knownArityError struct {
	Use    *KnownUse
	Wanted int
}

func (e *knownArityError) Error() string {
	return fmt.Sprintf("%s takes %d arguments; given %d", e.Use.Name, e.Wanted, len(e.Use.Args))
}

// execBy instantiates named implications: their requirements are checked for
// the given arguments and their conclusions stored.
func (ex *Executor) execBy(env *Scope, s *ByStmt, checker *Checker) Verdict {
	for _, use := range s.Uses {
		known, ok := env.LookupKnown(use.Name)
		if !ok {
			return fail(env, &UndeclaredKnownError{Name: use.Name})
		}
		for _, arg := range use.Args {
			if err := validateSymbol(env, arg, nil); err != nil {
				return fail(env, err)
			}
		}
		logic, ok := known.(*LogicFact)
		if !ok {
			if len(use.Args) != 0 {
				return fail(env, &knownArityError{Use: use})
			}
			continue
		}
		if len(use.Args) != len(logic.Vars) {
			return fail(env, &knownArityError{Use: use, Wanted: len(logic.Vars)})
		}
		bindings := Bindings{}
		for idx, v := range logic.Vars {
			bindings[v] = use.Args[idx]
		}
		for _, req := range logic.Reqs {
			instance := req.Substitute(bindings)
			if verdict := checker.Check(env, instance); verdict != True {
				env.Record(verdictMessage(verdict, instance))
				return verdict
			}
		}
		for _, concl := range logic.Concls {
			if err := ex.storeFact(env, concl.Substitute(bindings)); err != nil {
				return fail(env, err)
			}
		}
	}
	for _, use := range s.Uses {
		env.Recordf("OK! [by] %s", use)
	}
	return True
}

func (ex *Executor) execDef(env *Scope, s *DefStmt) Verdict {
	if err := env.DeclareOperator(s.Decl); err != nil {
		return fail(env, err)
	}
	if ex.Options.TraceDef {
		env.Recordf("[def] %s", s.Decl)
	}
	if err := ex.storeFacts(env, s.Decl.definingFacts()); err != nil {
		return fail(env, errors.Wrapf(err, "defining %s", s.Decl.Name))
	}
	return True
}

func (ex *Executor) execDefComposite(env *Scope, s *DefCompositeStmt) Verdict {
	bound := map[string]bool{}
	for _, param := range s.Decl.Params {
		bound[param] = true
	}
	for _, fact := range s.Decl.Facts {
		if err := validateFact(env, fact, bound); err != nil {
			return fail(env, err)
		}
	}
	if err := env.DeclareComposite(s.Decl); err != nil {
		return fail(env, err)
	}
	if ex.Options.TraceDef {
		env.Recordf("[def] %s", s.Decl.Format())
	}
	return True
}

// Checks

func (ex *Executor) execFacts(env *Scope, s *FactStmt, checker *Checker) Verdict {
	for _, fact := range s.Facts {
		if err := validateFact(env, fact, nil); err != nil {
			env.Record(err.Error())
			env.Record(verdictMessage(Error, fact))
			return Error
		}
		verdict := checker.Check(env, fact)
		if verdict == True {
			if err := ex.storeFact(env, fact); err != nil {
				return fail(env, err)
			}
		}
		env.Record(verdictMessage(verdict, fact))
		if verdict != True {
			return verdict
		}
	}
	return True
}

func (ex *Executor) execBlock(env *Scope, s *BlockStmt) Verdict {
	child := env.Child()
	child.local = true
	defer child.flushTo(env, "")
	for _, stmt := range s.Stmts {
		if ex.exec(child, stmt) == Error {
			return Error
		}
	}
	return True
}

type returnError struct {
	Fact Fact
	Name string
}

func (e *returnError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("can't return %s outside a block", e.Fact)
	}
	return fmt.Sprintf("can't return %s: %s is declared in this block", e.Fact, e.Name)
}

// execReturn checks facts in a block and stores them in the enclosing scope.
func (ex *Executor) execReturn(env *Scope, s *ReturnStmt, checker *Checker) Verdict {
	for _, fact := range s.Facts {
		if !env.local {
			return fail(env, &returnError{Fact: fact})
		}
		for _, name := range factNames(fact) {
			if _, ok := env.declaredHere(name); ok {
				return fail(env, &returnError{Fact: fact, Name: name})
			}
		}
		if err := validateFact(env, fact, nil); err != nil {
			return fail(env, err)
		}
	}
	for _, fact := range s.Facts {
		if verdict := checker.Check(env, fact); verdict != True {
			env.Record(verdictMessage(verdict, fact))
			return verdict
		}
	}
	for _, fact := range s.Facts {
		if err := ex.storeFact(env.parent, fact); err != nil {
			return fail(env, err)
		}
		env.Record(verdictMessage(True, fact))
	}
	return True
}

// execRun runs another file's statements in env, stopping at the first Error.
func (ex *Executor) execRun(env *Scope, s *RunStmt) Verdict {
	if ex.Loader == nil {
		return fail(env, errors.Errorf("can't run %s: no loader configured", s.Path))
	}
	if ex.running[s.Path] {
		return fail(env, errors.Errorf("can't run %s: it is already running", s.Path))
	}
	stmts, err := ex.Loader.Load(s.Path)
	if err != nil {
		return fail(env, errors.Wrapf(err, "running %s", s.Path))
	}
	if ex.running == nil {
		ex.running = map[string]bool{}
	}
	ex.running[s.Path] = true
	defer delete(ex.running, s.Path)

	env.Recordf("[run] %s", s.Path)
	for _, stmt := range stmts {
		if ex.exec(env, stmt) == Error {
			return Error
		}
	}
	return True
}

// Proofs

func (ex *Executor) execProve(env *Scope, s *ProveStmt, checker *Checker) Verdict {
	if err := checkNotShadowed(s.Goal, s.Block); err != nil {
		return fail(env, err)
	}
	if err := validateFact(env, s.Goal, nil); err != nil {
		return fail(env, err)
	}

	child := env.Child()
	finish := func(verdict Verdict) Verdict {
		child.flushTo(env, "[prove] ")
		env.Record(verdictMessage(verdict, s.Goal))
		return verdict
	}

	goals := []Fact{s.Goal}
	if logic, ok := s.Goal.(*LogicFact); ok {
		for _, v := range logic.Vars {
			if err := child.DeclareSingleton(v); err != nil {
				child.Record(err.Error())
				return finish(Error)
			}
		}
		for _, req := range logic.Reqs {
			if err := ex.storeFact(child, req); err != nil {
				child.Record(err.Error())
				return finish(Error)
			}
		}
		goals = logic.Concls
	}

	if verdict := ex.execAll(child, s.Block); verdict != True {
		return finish(verdict)
	}
	for _, goal := range goals {
		verdict := checker.Check(child, goal)
		if verdict != True {
			child.Record(verdictMessage(verdict, goal))
			return finish(verdict)
		}
	}
	if err := ex.storeFact(env, s.Goal); err != nil {
		child.Record(err.Error())
		return finish(Error)
	}
	return finish(True)
}

func (ex *Executor) execProveByContradiction(env *Scope, s *ProveByContradictionStmt, checker *Checker) Verdict {
	if _, ok := s.Goal.(*LogicFact); ok {
		return fail(env, errors.Errorf("can't prove %s by contradiction", s.Goal))
	}
	if err := checkNotShadowed(s.Goal, s.Block); err != nil {
		return fail(env, err)
	}
	for _, fact := range []Fact{s.Goal, s.Contradiction} {
		if err := validateFact(env, fact, nil); err != nil {
			return fail(env, err)
		}
	}
	negGoal, err := s.Goal.Negate()
	if err != nil {
		return fail(env, err)
	}
	negContradiction, err := s.Contradiction.Negate()
	if err != nil {
		return fail(env, err)
	}

	child := env.Child()
	finish := func(verdict Verdict) Verdict {
		child.flushTo(env, "[prove_by_contradiction] ")
		env.Record(verdictMessage(verdict, s.Goal))
		return verdict
	}

	if err := ex.storeFact(child, negGoal); err != nil {
		child.Record(err.Error())
		return finish(Error)
	}
	if verdict := ex.execAll(child, s.Block); verdict != True {
		return finish(verdict)
	}
	for _, fact := range []Fact{s.Contradiction, negContradiction} {
		verdict := checker.Check(child, fact)
		if verdict != True {
			child.Record(verdictMessage(verdict, fact))
			if verdict == Error {
				return finish(Error)
			}
			return finish(Unknown)
		}
	}
	if err := ex.storeFact(env, s.Goal); err != nil {
		child.Record(err.Error())
		return finish(Error)
	}
	return finish(True)
}

func (ex *Executor) execPostfixProve(env *Scope, s *PostfixProveStmt, checker *Checker) Verdict {
	for _, fact := range s.Facts {
		if err := checkNotShadowed(fact, s.Block); err != nil {
			return fail(env, err)
		}
		if err := validateFact(env, fact, nil); err != nil {
			return fail(env, err)
		}
	}

	child := env.Child()
	verdict := ex.execAll(child, s.Block)
	var failed Fact
	if verdict == True {
		for _, fact := range s.Facts {
			if verdict = checker.Check(child, fact); verdict != True {
				failed = fact
				break
			}
		}
	}
	child.flushTo(env, "[prove] ")
	if failed != nil {
		env.Record(verdictMessage(verdict, failed))
	}
	if verdict != True {
		return verdict
	}
	for _, fact := range s.Facts {
		if err := ex.storeFact(env, fact); err != nil {
			return fail(env, err)
		}
		env.Record(verdictMessage(True, fact))
	}
	return True
}

type shadowError struct {
	Name string
	Goal Fact
}

func (e *shadowError) Error() string {
	return fmt.Sprintf("proof of %s can't declare %s, which the goal uses", e.Goal, e.Name)
}

// checkNotShadowed rejects proof blocks declaring a name the goal mentions.
// Only the block's own statements count: a nested block's declarations are
// gone by the time the goal is checked, and it can't redeclare a name the
// goal already uses anyway.
func checkNotShadowed(goal Fact, block []Statement) error {
	used := map[string]bool{}
	for _, name := range factNames(goal) {
		used[name] = true
	}
	for _, stmt := range block {
		for _, name := range declaredNames(stmt) {
			if used[name] {
				return &shadowError{Name: name, Goal: goal}
			}
		}
	}
	return nil
}

// factNames lists the operators, singletons and bound variables a fact mentions.
func factNames(fact Fact) []string {
	var names []string
	walkFact(fact, func(f Fact) {
		switch fact := f.(type) {
		case *OptFact:
			names = append(names, fact.Name)
			names = append(names, singletonsOf(fact.Args)...)
		case *LogicFact:
			names = append(names, fact.Vars...)
		}
	})
	return names
}

// Have

type haveArityError struct {
	Names        int
	Placeholders int
}

func (e *haveArityError) Error() string {
	return fmt.Sprintf("have introduces %d names but its facts contain %d %s placeholders", e.Names, e.Placeholders, ExistsSymbol)
}

func (ex *Executor) execHave(env *Scope, s *HaveStmt, checker *Checker) Verdict {
	placeholders := 0
	for _, fact := range s.Facts {
		if err := validateFact(env, fact, nil); err != nil {
			return fail(env, err)
		}
		verdict := checker.Check(env, fact)
		if verdict != True {
			env.Record(verdictMessage(verdict, fact))
			return verdict
		}
		walkFact(fact, func(f Fact) {
			if opt, ok := f.(*OptFact); ok {
				for _, name := range singletonsOf(opt.Args) {
					if name == ExistsSymbol {
						placeholders++
					}
				}
			}
		})
	}
	if placeholders != len(s.Names) {
		return fail(env, &haveArityError{Names: len(s.Names), Placeholders: placeholders})
	}

	for _, name := range s.Names {
		if err := env.DeclareSingleton(name); err != nil {
			return fail(env, err)
		}
	}
	next := 0
	witness := func(sym Symbol) (Symbol, error) {
		if single, ok := sym.(*Singleton); ok && single.Name == ExistsSymbol {
			name := s.Names[next]
			next++
			return NewSingleton(name), nil
		}
		return sym, nil
	}
	for _, fact := range s.Facts {
		instance, err := fact.MapSymbols(witness)
		if err != nil {
			return fail(env, err)
		}
		if err := ex.storeFact(env, instance); err != nil {
			return fail(env, err)
		}
		env.Record(verdictMessage(True, instance))
	}
	return True
}

// Validation

// validateFact checks that every operator and variable the fact mentions is
// declared; bound holds variables introduced by enclosing implications.
func validateFact(env *Scope, fact Fact, bound map[string]bool) error {
	switch f := fact.(type) {
	case *OptFact:
		decl, _, ok := env.LookupOperator(f.Name)
		if !ok {
			return &UndeclaredOperatorError{Name: f.Name}
		}
		if len(f.Args) != decl.Arity() {
			return &ArityMismatchError{Name: f.Name, Wanted: decl.Arity(), Got: len(f.Args)}
		}
		for _, arg := range f.Args {
			if err := validateSymbol(env, arg, bound); err != nil {
				return err
			}
		}
	case *LogicFact:
		inner := make(map[string]bool, len(bound)+len(f.Vars))
		for name := range bound {
			inner[name] = true
		}
		for _, v := range f.Vars {
			inner[v] = true
		}
		for _, sub := range append(append([]Fact{}, f.Reqs...), f.Concls...) {
			if err := validateFact(env, sub, inner); err != nil {
				return err
			}
		}
	case *OrFact:
		if err := validateFact(env, f.Left, bound); err != nil {
			return err
		}
		return validateFact(env, f.Right, bound)
	case *AndFact:
		if err := validateFact(env, f.Left, bound); err != nil {
			return err
		}
		return validateFact(env, f.Right, bound)
	}
	return nil
}

func validateSymbol(env *Scope, sym Symbol, bound map[string]bool) error {
	switch s := sym.(type) {
	case *Singleton:
		if bound[s.Name] || env.IsNameBound(s.Name) {
			return nil
		}
		return &UndeclaredVariableError{Name: s.Name}
	case *Composite:
		decl, ok := env.LookupComposite(s.Operator)
		if !ok {
			return &UndeclaredOperatorError{Name: s.Operator}
		}
		if len(s.Args) != len(decl.Params) {
			return &ArityMismatchError{Name: s.Operator, Wanted: len(decl.Params), Got: len(s.Args)}
		}
		for _, arg := range s.Args {
			if err := validateSymbol(env, arg, bound); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Errorf("unexpected symbol %s", sym)
}

// Literal operators

// elaborate resolves literal operator calls in the statement's own facts.
// Nested proof and block statements are elaborated when they run.
func (ex *Executor) elaborate(env *Scope, stmt Statement) (Statement, error) {
	resolve := resolveLiterals(env, ex.Literals)
	mapFacts := func(facts []Fact) ([]Fact, error) {
		return mapFactList(facts, resolve)
	}
	switch s := stmt.(type) {
	case *LetStmt:
		facts, err := mapFacts(s.Facts)
		return &LetStmt{Names: s.Names, Facts: facts}, err
	case *LetsStmt:
		facts, err := mapFacts(s.Facts)
		return &LetsStmt{Name: s.Name, Pattern: s.Pattern, Facts: facts}, err
	case *LetAliasStmt:
		targets, err := mapSymbolList(s.Targets, resolve)
		return &LetAliasStmt{Name: s.Name, Targets: targets}, err
	case *KnowStmt:
		facts, err := mapFacts(s.Facts)
		return &KnowStmt{Names: s.Names, Facts: facts}, err
	case *DefStmt:
		reqs, err := mapFacts(s.Decl.Reqs)
		if err != nil {
			return stmt, err
		}
		concls, err := mapFacts(s.Decl.Concls)
		if err != nil {
			return stmt, err
		}
		decl := *s.Decl
		decl.Reqs, decl.Concls = reqs, concls
		return &DefStmt{Decl: &decl}, nil
	case *DefCompositeStmt:
		facts, err := mapFacts(s.Decl.Facts)
		if err != nil {
			return stmt, err
		}
		decl := *s.Decl
		decl.Facts = facts
		return &DefCompositeStmt{Decl: &decl}, nil
	case *ByStmt:
		uses := make([]*KnownUse, len(s.Uses))
		for idx, use := range s.Uses {
			args, err := mapSymbolList(use.Args, resolve)
			if err != nil {
				return stmt, err
			}
			uses[idx] = &KnownUse{Name: use.Name, Args: args}
		}
		return &ByStmt{Uses: uses}, nil
	case *ReturnStmt:
		facts, err := mapFacts(s.Facts)
		return &ReturnStmt{Facts: facts}, err
	case *PostfixProveStmt:
		facts, err := mapFacts(s.Facts)
		return &PostfixProveStmt{Facts: facts, Block: s.Block}, err
	case *HaveStmt:
		facts, err := mapFacts(s.Facts)
		return &HaveStmt{Names: s.Names, Facts: facts}, err
	case *FactStmt:
		facts, err := mapFacts(s.Facts)
		return &FactStmt{Facts: facts}, err
	case *ProveStmt:
		goal, err := s.Goal.MapSymbols(resolve)
		return &ProveStmt{Goal: goal, Block: s.Block}, err
	case *ProveByContradictionStmt:
		goal, err := s.Goal.MapSymbols(resolve)
		if err != nil {
			return stmt, err
		}
		contradiction, err := s.Contradiction.MapSymbols(resolve)
		return &ProveByContradictionStmt{Goal: goal, Block: s.Block, Contradiction: contradiction}, err
	}
	return stmt, nil
}
