package lang

// Snapshot is a JSON-friendly dump of a scope chain, innermost scope first.
type Snapshot struct {
	Singletons []string            `json:"singletons"`
	Patterns   map[string]string   `json:"patterns,omitempty"`
	Aliases    map[string][]string `json:"aliases,omitempty"`
	Decls      []string            `json:"decls"`
	Facts      map[string][]string `json:"facts"`
	Knowns     map[string]string   `json:"knowns,omitempty"`
	Parent     *Snapshot           `json:"parent,omitempty"`
}

func (s *Scope) Snapshot() *Snapshot {
	snap := &Snapshot{
		Singletons: append([]string{}, s.singletonOrder...),
		Decls:      []string{},
		Facts:      map[string][]string{},
	}
	if len(s.patterns) > 0 {
		snap.Patterns = map[string]string{}
		for _, pattern := range s.patterns {
			snap.Patterns[pattern.Name] = pattern.Pattern
		}
	}
	if len(s.aliases) > 0 {
		snap.Aliases = map[string][]string{}
		for name, targets := range s.aliases {
			strs := make([]string, len(targets))
			for idx, target := range targets {
				strs[idx] = target.String()
			}
			snap.Aliases[name] = strs
		}
	}
	for _, name := range sortedKeys(s.operators) {
		snap.Decls = append(snap.Decls, s.operators[name].String())
	}
	for _, name := range sortedKeys(s.composites) {
		snap.Decls = append(snap.Decls, s.composites[name].Format().String())
	}
	for _, name := range sortedKeys(s.literals) {
		snap.Decls = append(snap.Decls, s.literals[name].Format().String())
	}
	for _, name := range s.factOrder {
		for _, entry := range s.facts[name] {
			snap.Facts[name] = append(snap.Facts[name], entry.AsFact(name).String())
		}
	}
	if len(s.knowns) > 0 {
		snap.Knowns = map[string]string{}
		for name, fact := range s.knowns {
			snap.Knowns[name] = fact.String()
		}
	}
	if s.parent != nil {
		snap.Parent = s.parent.Snapshot()
	}
	return snap
}
