// Package thunderbird reads Thunderbird's per-account filter files
// (msgFilterRules.dat) into an ordered set of rules.
package thunderbird

import "tb2imapfilter/internal/filter"

// Action is one step a rule performs on matching messages. Value is empty
// for action types that take no argument.
type Action struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value,omitempty"`
}

// Rule is a single named filter owned by one IMAP account directory.
type Rule struct {
	Name    string
	Box     string // account directory name, i.e. the IMAP server hostname
	Enabled bool
	// Condition is nil when the rule matches every message.
	Condition *filter.Node
	Actions   []Action
	// Err holds a condition that could not be translated. Such a rule is
	// kept so later records still attach to it, but it is never rendered.
	Err error
}

// RuleSet maps rule names to rules and remembers first-insertion order.
// Putting an existing name replaces the rule but keeps its position.
type RuleSet struct {
	names []string
	rules map[string]*Rule
}

func NewRuleSet() *RuleSet {
	return &RuleSet{rules: map[string]*Rule{}}
}

// Put stores r under r.Name.
func (s *RuleSet) Put(r *Rule) {
	if _, ok := s.rules[r.Name]; !ok {
		s.names = append(s.names, r.Name)
	}
	s.rules[r.Name] = r
}

func (s *RuleSet) Get(name string) (*Rule, bool) {
	r, ok := s.rules[name]
	return r, ok
}

func (s *RuleSet) Len() int {
	return len(s.names)
}

// Rules returns the rules in insertion order.
func (s *RuleSet) Rules() []*Rule {
	out := make([]*Rule, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, s.rules[n])
	}
	return out
}
