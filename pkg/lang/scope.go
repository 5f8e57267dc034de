package lang

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-set/v2"
	pp "github.com/vilterp/litex/pkg/prettyprint"
)

// Scope is one node of the environment tree. Reads fall through to the parent;
// writes only ever touch the receiver.
type Scope struct {
	parent *Scope

	operators  map[string]*OperatorDecl
	composites map[string]*CompositeDecl
	literals   map[string]*LiteralDecl
	singletons *set.Set[string]
	patterns   []*PatternDecl
	aliases    map[string][]Symbol

	facts map[string][]*StoredEntry
	// named facts for `by`, kept apart from the symbol namespace
	knowns map[string]Fact
	// declaration order, for snapshots and commit
	singletonOrder []string
	factOrder      []string

	// local is set on block scopes, which `return` may store through.
	local bool

	messages []string
}

func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:     parent,
		operators:  map[string]*OperatorDecl{},
		composites: map[string]*CompositeDecl{},
		literals:   map[string]*LiteralDecl{},
		singletons: set.New[string](0),
		aliases:    map[string][]Symbol{},
		facts:      map[string][]*StoredEntry{},
		knowns:     map[string]Fact{},
	}
}

func (s *Scope) Parent() *Scope {
	return s.parent
}

// Child opens a new scope below s.
func (s *Scope) Child() *Scope {
	return NewScope(s)
}

// Names

// declaredHere reports what name is declared as in this scope only.
func (s *Scope) declaredHere(name string) (DeclKind, bool) {
	if _, ok := s.operators[name]; ok {
		return DeclOperator, true
	}
	if _, ok := s.composites[name]; ok {
		return DeclComposite, true
	}
	if _, ok := s.literals[name]; ok {
		return DeclLiteral, true
	}
	if s.singletons.Contains(name) {
		return DeclSingleton, true
	}
	if _, ok := s.aliases[name]; ok {
		return DeclAlias, true
	}
	for _, pattern := range s.patterns {
		if pattern.matches(name) {
			return DeclPattern, true
		}
	}
	return "", false
}

// lookupName finds what name is declared as, searching up the chain.
func (s *Scope) lookupName(name string) (DeclKind, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if kind, ok := cur.declaredHere(name); ok {
			return kind, true
		}
	}
	return "", false
}

// bindsSingletonHere reports whether this scope makes name usable as a symbol.
func (s *Scope) bindsSingletonHere(name string) bool {
	kind, ok := s.declaredHere(name)
	return ok && (kind == DeclSingleton || kind == DeclPattern || kind == DeclAlias)
}

func (s *Scope) checkFresh(name string) error {
	if isReserved(name) {
		return &ReservedNameError{Name: name}
	}
	if kind, ok := s.lookupName(name); ok {
		return &DuplicateDeclarationError{Name: name, Existing: kind}
	}
	return nil
}

// IsNameBound reports whether name can be used as a symbol here.
func (s *Scope) IsNameBound(name string) bool {
	if isReserved(name) {
		return true
	}
	for cur := s; cur != nil; cur = cur.parent {
		if cur.bindsSingletonHere(name) {
			return true
		}
	}
	return false
}

// Declarations

func (s *Scope) DeclareOperator(decl *OperatorDecl) error {
	if err := s.checkFresh(decl.Name); err != nil {
		return err
	}
	s.operators[decl.Name] = decl
	return nil
}

func (s *Scope) DeclareSingleton(name string) error {
	if err := s.checkFresh(name); err != nil {
		return err
	}
	s.singletons.Insert(name)
	s.singletonOrder = append(s.singletonOrder, name)
	return nil
}

func (s *Scope) DeclarePattern(decl *PatternDecl) error {
	if err := s.checkFresh(decl.Name); err != nil {
		return err
	}
	s.patterns = append(s.patterns, decl)
	return nil
}

func (s *Scope) DeclareAlias(name string, targets []Symbol) error {
	if err := s.checkFresh(name); err != nil {
		return err
	}
	s.aliases[name] = targets
	return nil
}

func (s *Scope) DeclareComposite(decl *CompositeDecl) error {
	if err := s.checkFresh(decl.Name); err != nil {
		return err
	}
	s.composites[decl.Name] = decl
	return nil
}

func (s *Scope) DeclareLiteral(decl *LiteralDecl) error {
	if err := s.checkFresh(decl.Name); err != nil {
		return err
	}
	s.literals[decl.Name] = decl
	return nil
}

// DeclareKnown names a known fact. Names are unique along the chain.
func (s *Scope) DeclareKnown(name string, fact Fact) error {
	if isReserved(name) {
		return &ReservedNameError{Name: name}
	}
	if _, ok := s.LookupKnown(name); ok {
		return &DuplicateDeclarationError{Name: name, Existing: DeclKnown}
	}
	s.knowns[name] = fact
	return nil
}

// Lookups

func (s *Scope) LookupKnown(name string) (Fact, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if fact, ok := cur.knowns[name]; ok {
			return fact, true
		}
	}
	return nil, false
}

// LookupOperator returns the declaration of name and how many scopes up it was found.
func (s *Scope) LookupOperator(name string) (*OperatorDecl, int, bool) {
	level := 0
	for cur := s; cur != nil; cur = cur.parent {
		if decl, ok := cur.operators[name]; ok {
			return decl, level, true
		}
		level++
	}
	return nil, 0, false
}

func (s *Scope) LookupComposite(name string) (*CompositeDecl, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if decl, ok := cur.composites[name]; ok {
			return decl, true
		}
	}
	return nil, false
}

func (s *Scope) LookupLiteral(name string) (*LiteralDecl, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if decl, ok := cur.literals[name]; ok {
			return decl, true
		}
	}
	return nil, false
}

func (s *Scope) LookupAlias(name string) ([]Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if targets, ok := cur.aliases[name]; ok {
			return targets, true
		}
	}
	return nil, false
}

// Facts

func (s *Scope) addEntry(name string, entry *StoredEntry) {
	if _, ok := s.facts[name]; !ok {
		s.factOrder = append(s.factOrder, name)
	}
	s.facts[name] = append(s.facts[name], entry)
}

// Entries returns the entries stored under name in this scope only.
func (s *Scope) Entries(name string) []*StoredEntry {
	return s.facts[name]
}

// EntryCount counts the entries stored in this scope and its ancestors.
func (s *Scope) EntryCount() int {
	count := 0
	for cur := s; cur != nil; cur = cur.parent {
		for _, entries := range cur.facts {
			count += len(entries)
		}
	}
	return count
}

// Messages

func (s *Scope) Record(msg string) {
	s.messages = append(s.messages, msg)
}

func (s *Scope) Recordf(format string, args ...interface{}) {
	s.Record(fmt.Sprintf(format, args...))
}

// Messages returns a copy of the messages recorded so far.
func (s *Scope) Messages() []string {
	return append([]string(nil), s.messages...)
}

// Drain returns the recorded messages and clears them.
func (s *Scope) Drain() []string {
	out := s.messages
	s.messages = nil
	return out
}

func (s *Scope) flushTo(parent *Scope, prefix string) {
	for _, msg := range s.Drain() {
		parent.Record(prefix + msg)
	}
}

// commit moves everything declared and stored in s into its parent.
func (s *Scope) commit() {
	p := s.parent
	for name, decl := range s.operators {
		p.operators[name] = decl
	}
	for name, decl := range s.composites {
		p.composites[name] = decl
	}
	for name, decl := range s.literals {
		p.literals[name] = decl
	}
	for _, name := range s.singletonOrder {
		p.singletons.Insert(name)
		p.singletonOrder = append(p.singletonOrder, name)
	}
	p.patterns = append(p.patterns, s.patterns...)
	for name, targets := range s.aliases {
		p.aliases[name] = targets
	}
	for _, name := range s.factOrder {
		for _, entry := range s.facts[name] {
			p.addEntry(name, entry)
		}
	}
	for name, fact := range s.knowns {
		p.knowns[name] = fact
	}
	s.flushTo(p, "")
}

// reset forgets every declaration and fact in s. Messages and the parent are kept.
func (s *Scope) reset() {
	fresh := NewScope(s.parent)
	fresh.local = s.local
	fresh.messages = s.messages
	*s = *fresh
}

// Format renders the declarations and facts of this scope, not its ancestors.
func (s *Scope) Format() pp.Doc {
	var docs []pp.Doc
	for _, name := range s.singletonOrder {
		docs = append(docs, pp.Textf("let %s", name))
	}
	for _, pattern := range s.patterns {
		docs = append(docs, pp.Textf("lets %s %q", pattern.Name, pattern.Pattern))
	}
	for _, name := range sortedKeys(s.aliases) {
		docs = append(docs, pp.Seq([]pp.Doc{pp.Textf("let_alias %s ", name), formatSymbols(s.aliases[name])}))
	}
	for _, name := range sortedKeys(s.operators) {
		docs = append(docs, s.operators[name].Format())
	}
	for _, name := range sortedKeys(s.composites) {
		docs = append(docs, s.composites[name].Format())
	}
	for _, name := range sortedKeys(s.literals) {
		docs = append(docs, s.literals[name].Format())
	}
	for _, name := range s.factOrder {
		for _, entry := range s.facts[name] {
			docs = append(docs, pp.Seq([]pp.Doc{pp.Text("know "), entry.AsFact(name).Format()}))
		}
	}
	for _, name := range sortedKeys(s.knowns) {
		docs = append(docs, pp.Seq([]pp.Doc{pp.Textf("know [%s] ", name), s.knowns[name].Format()}))
	}
	return pp.Block(pp.Text("Scope"), docs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
