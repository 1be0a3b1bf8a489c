package thunderbird

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"tb2imapfilter/internal/filter"
)

var (
	ErrActionOutsideRule = errors.New("rule field outside a rule")
	ErrOrphanActionValue = errors.New("actionValue before any action")
)

// Record keys the assembler understands. Everything else (version,
// logging, type, ...) is skipped.
const (
	keyName        = "name"
	keyEnabled     = "enabled"
	keyAction      = "action"
	keyActionValue = "actionValue"
	keyCondition   = "condition"
)

type assemblerState int

const (
	noCurrentRule assemblerState = iota
	hasCurrentRule
)

// Assembler folds the records of one filter file into rules. A name
// record opens a rule; action, actionValue, condition and enabled records
// modify the open rule and are an error before the first name.
type Assembler struct {
	box     string
	state   assemblerState
	current *Rule
	rules   *RuleSet
}

// NewAssembler returns an assembler whose rules belong to box.
func NewAssembler(box string) *Assembler {
	return &Assembler{box: box, rules: NewRuleSet()}
}

// Feed applies one record.
func (a *Assembler) Feed(rec Record) error {
	if rec.Key == keyName {
		a.current = &Rule{Name: rec.Value, Box: a.box, Enabled: true}
		a.rules.Put(a.current)
		a.state = hasCurrentRule
		return nil
	}

	if a.state == noCurrentRule {
		switch rec.Key {
		case keyAction, keyActionValue, keyCondition:
			return fmt.Errorf("%w: %s=%q", ErrActionOutsideRule, rec.Key, rec.Value)
		}
		return nil
	}

	r := a.current
	switch rec.Key {
	case keyAction:
		r.Actions = append(r.Actions, Action{Type: rec.Value})

	case keyActionValue:
		if len(r.Actions) == 0 {
			return fmt.Errorf("%w: rule %q", ErrOrphanActionValue, r.Name)
		}
		r.Actions[len(r.Actions)-1].Value = rec.Value

	case keyCondition:
		cond, err := filter.ParseCondition(rec.Value)
		switch {
		case errors.Is(err, filter.ErrUnsupportedCondition):
			r.Condition, r.Err = nil, err
		case err != nil:
			return fmt.Errorf("rule %q: %w", r.Name, err)
		default:
			r.Condition, r.Err = cond, nil
		}

	case keyEnabled:
		r.Enabled = rec.Value != "no"
	}
	return nil
}

// Rules returns everything assembled so far.
func (a *Assembler) Rules() *RuleSet {
	return a.rules
}

// ParseRules reads a whole filter file. Any malformed line or misplaced
// record aborts the file; the error names the line number.
func ParseRules(r io.Reader, box string) (*RuleSet, error) {
	a := NewAssembler(box)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		rec, err := ParseRecord(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := a.Feed(rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return a.Rules(), nil
}
