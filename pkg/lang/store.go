package lang

import (
	"github.com/pkg/errors"
)

// Store records fact in env under the given requirement layers. With
// deriveContrapositive set, atomic facts stored under requirements also get their
// contrapositives stored. Either everything is stored or nothing is.
func Store(env *Scope, fact Fact, layers []RequirementLayer, deriveContrapositive bool) error {
	_, err := store(env, fact, layers, deriveContrapositive)
	return err
}

type pendingEntry struct {
	name  string
	entry *StoredEntry
}

func (p pendingEntry) String() string {
	return p.entry.AsFact(p.name).String()
}

// store plans every entry first and only touches env once the whole plan succeeded.
func store(env *Scope, fact Fact, layers []RequirementLayer, derive bool) ([]pendingEntry, error) {
	plan := &storePlan{env: env}
	if err := plan.add(fact, layers, derive); err != nil {
		return nil, errors.Wrapf(err, "storing %s", fact)
	}
	for _, pending := range plan.entries {
		env.addEntry(pending.name, pending.entry)
	}
	return plan.entries, nil
}

type storePlan struct {
	env     *Scope
	entries []pendingEntry
}

func (p *storePlan) add(fact Fact, layers []RequirementLayer, derive bool) error {
	switch f := fact.(type) {
	case *OptFact:
		return p.addOpt(f, layers, derive)
	case *BuiltinFact:
		return nil
	case *LogicFact:
		if err := p.addAll(f.Concls, appendLayer(layers, RequirementLayer{Vars: f.Vars, Reqs: f.Reqs}), derive); err != nil {
			return err
		}
		if f.Kind == Iff {
			return p.addAll(f.Reqs, appendLayer(layers, RequirementLayer{Vars: f.Vars, Reqs: f.Concls}), derive)
		}
		return nil
	case *OrFact:
		if f.Negated {
			conj, err := deMorgan(f.Left, f.Right, false)
			if err != nil {
				return err
			}
			return p.add(conj, layers, derive)
		}
		disjuncts := f.disjuncts()
		for idx, disjunct := range disjuncts {
			others := make([]Fact, 0, len(disjuncts)-1)
			others = append(others, disjuncts[:idx]...)
			others = append(others, disjuncts[idx+1:]...)
			negs, err := negateAll(others)
			if err != nil {
				return err
			}
			if err := p.add(disjunct, appendLayer(layers, RequirementLayer{Reqs: negs}), derive); err != nil {
				return err
			}
		}
		return nil
	case *AndFact:
		if f.Negated {
			disj, err := deMorgan(f.Left, f.Right, true)
			if err != nil {
				return err
			}
			return p.add(disj, layers, derive)
		}
		if err := p.add(f.Left, layers, derive); err != nil {
			return err
		}
		return p.add(f.Right, layers, derive)
	}
	return errors.Errorf("unknown fact type %T", fact)
}

func (p *storePlan) addAll(facts []Fact, layers []RequirementLayer, derive bool) error {
	for _, fact := range facts {
		if err := p.add(fact, layers, derive); err != nil {
			return err
		}
	}
	return nil
}

func (p *storePlan) addOpt(opt *OptFact, layers []RequirementLayer, derive bool) error {
	decl, _, ok := p.env.LookupOperator(opt.Name)
	if !ok {
		return &UndeclaredOperatorError{Name: opt.Name}
	}
	if len(opt.Args) != decl.Arity() {
		return &ArityMismatchError{Name: opt.Name, Wanted: decl.Arity(), Got: len(opt.Args)}
	}

	p.entries = append(p.entries, pendingEntry{
		name:  opt.Name,
		entry: &StoredEntry{Args: opt.Args, Layers: layers, Negated: opt.Negated},
	})
	if decl.Commutative && len(opt.Args) == 2 && !opt.Args[0].Equal(opt.Args[1]) {
		p.entries = append(p.entries, pendingEntry{
			name: opt.Name,
			entry: &StoredEntry{
				Args:    []Symbol{opt.Args[1], opt.Args[0]},
				Layers:  layers,
				Negated: opt.Negated,
			},
		})
	}

	if derive && len(layers) > 0 {
		return p.addContrapositives(opt, layers)
	}
	return nil
}

// addContrapositives stores, for each requirement r of the layers,
// `if vars: other reqs, not opt {not r}`. Requirements that are implications
// have no negation and are skipped.
func (p *storePlan) addContrapositives(opt *OptFact, layers []RequirementLayer) error {
	var vars []string
	var reqs []Fact
	for _, layer := range layers {
		vars = append(vars, layer.Vars...)
		reqs = append(reqs, layer.Reqs...)
	}
	for idx, req := range reqs {
		negReq, err := req.Negate()
		if err != nil {
			continue
		}
		hyps := make([]Fact, 0, len(reqs))
		hyps = append(hyps, reqs[:idx]...)
		hyps = append(hyps, reqs[idx+1:]...)
		hyps = append(hyps, Not(opt))
		if err := p.add(NewIf(vars, hyps, []Fact{negReq}), nil, false); err != nil {
			return err
		}
	}
	return nil
}

// deMorgan negates both sides and joins them with the dual connective:
// intoOr=false gives `not l and not r`, intoOr=true gives `not l or not r`.
func deMorgan(left, right Fact, intoOr bool) (Fact, error) {
	negLeft, err := left.Negate()
	if err != nil {
		return nil, err
	}
	negRight, err := right.Negate()
	if err != nil {
		return nil, err
	}
	if intoOr {
		return NewOr(negLeft, negRight), nil
	}
	return NewAnd(negLeft, negRight), nil
}
