package thunderbird

import (
	"io"

	"gopkg.in/yaml.v3"

	"tb2imapfilter/internal/filter"
)

type ruleView struct {
	Name      string       `yaml:"name"`
	Box       string       `yaml:"box"`
	Enabled   bool         `yaml:"enabled"`
	Condition *filter.Node `yaml:"condition"`
	Actions   []Action     `yaml:"actions"`
	Problem   string       `yaml:"problem,omitempty"`
}

// DumpYAML writes the assembled rules, in order, as a YAML list.
func DumpYAML(w io.Writer, rules *RuleSet) error {
	views := make([]ruleView, 0, rules.Len())
	for _, r := range rules.Rules() {
		v := ruleView{
			Name:      r.Name,
			Box:       r.Box,
			Enabled:   r.Enabled,
			Condition: r.Condition,
			Actions:   r.Actions,
		}
		if r.Err != nil {
			v.Problem = r.Err.Error()
		}
		views = append(views, v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(views); err != nil {
		return err
	}
	return enc.Close()
}
