package lang

// RequirementLayer is one level of `if vars: reqs` wrapped around a stored fact.
type RequirementLayer struct {
	Vars []string
	Reqs []Fact
}

// StoredEntry is an atomic fact as recorded in a scope's index, under the
// requirement layers it was asserted with. Entries are immutable once stored.
type StoredEntry struct {
	Args    []Symbol
	Layers  []RequirementLayer
	Negated bool
}

// FreeVars returns the bound variables of every layer, outermost first.
func (e *StoredEntry) FreeVars() []string {
	var out []string
	for _, layer := range e.Layers {
		out = append(out, layer.Vars...)
	}
	return out
}

func (e *StoredEntry) freeVarSet() map[string]bool {
	out := map[string]bool{}
	for _, layer := range e.Layers {
		for _, v := range layer.Vars {
			out[v] = true
		}
	}
	return out
}

// FixedVars returns the singletons in the entry's arguments which aren't bound by a layer.
func (e *StoredEntry) FixedVars() []string {
	free := e.freeVarSet()
	var out []string
	for _, name := range singletonsOf(e.Args) {
		if !free[name] {
			out = append(out, name)
		}
	}
	return out
}

// IsLiteral reports whether no layer carries requirements.
func (e *StoredEntry) IsLiteral() bool {
	for _, layer := range e.Layers {
		if len(layer.Reqs) > 0 {
			return false
		}
	}
	return true
}

// AsFact rebuilds the fact the entry stands for, e.g. `if x: q(x) {p(x)}`.
func (e *StoredEntry) AsFact(name string) Fact {
	var fact Fact = &OptFact{Name: name, Args: e.Args, Negated: e.Negated}
	for idx := len(e.Layers) - 1; idx >= 0; idx-- {
		layer := e.Layers[idx]
		fact = NewIf(layer.Vars, layer.Reqs, []Fact{fact})
	}
	return fact
}

func appendLayer(layers []RequirementLayer, layer RequirementLayer) []RequirementLayer {
	out := make([]RequirementLayer, len(layers), len(layers)+1)
	copy(out, layers)
	return append(out, layer)
}
