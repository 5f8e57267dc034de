package lang

// matcher unifies a stored entry's arguments against a query's, binding the
// entry's free variables along the way.
type matcher struct {
	env      *Scope
	free     map[string]bool
	bindings Bindings
}

func newMatcher(env *Scope, free map[string]bool) *matcher {
	return &matcher{env: env, free: free, bindings: Bindings{}}
}

func (m *matcher) matchAll(patterns, actuals []Symbol) bool {
	if len(patterns) != len(actuals) {
		return false
	}
	for idx := range patterns {
		if !m.match(patterns[idx], actuals[idx]) {
			return false
		}
	}
	return true
}

func (m *matcher) match(pattern, actual Symbol) bool {
	if s, ok := actual.(*Singleton); ok && s.Name == AnySymbol {
		return true
	}
	switch p := pattern.(type) {
	case *Singleton:
		if !m.free[p.Name] {
			return m.env.sameSymbol(p, actual)
		}
		if bound, ok := m.bindings[p.Name]; ok {
			return m.env.sameSymbol(bound, actual)
		}
		m.bindings[p.Name] = actual
		return true
	case *Composite:
		a, ok := actual.(*Composite)
		if !ok || a.Operator != p.Operator || len(a.Args) != len(p.Args) {
			return m.env.sameSymbol(p, actual)
		}
		return m.matchAll(p.Args, a.Args)
	}
	return pattern.Equal(actual)
}

// sameSymbol is equality up to aliases: an alias equals each of its targets,
// and two aliases are equal if they share a target.
func (s *Scope) sameSymbol(a, b Symbol) bool {
	if a.Equal(b) {
		return true
	}
	aTargets := s.aliasTargets(a)
	bTargets := s.aliasTargets(b)
	for _, target := range aTargets {
		if target.Equal(b) {
			return true
		}
		for _, other := range bTargets {
			if target.Equal(other) {
				return true
			}
		}
	}
	for _, target := range bTargets {
		if target.Equal(a) {
			return true
		}
	}
	return false
}

func (s *Scope) aliasTargets(sym Symbol) []Symbol {
	single, ok := sym.(*Singleton)
	if !ok {
		return nil
	}
	targets, _ := s.LookupAlias(single.Name)
	return targets
}
