package thunderbird

import "errors"

var (
	ErrRuleDisabled = errors.New("rule is disabled")
	ErrNoActions    = errors.New("rule has no actions")
)

// Skip records a rule left out of a generated script and why.
type Skip struct {
	Rule   string
	Box    string
	Reason error
}

// Renderable reports why r cannot be rendered, or nil if it can.
func Renderable(r *Rule, includeDisabled bool) error {
	switch {
	case r.Err != nil:
		return r.Err
	case !r.Enabled && !includeDisabled:
		return ErrRuleDisabled
	case len(r.Actions) == 0:
		return ErrNoActions
	}
	return nil
}
