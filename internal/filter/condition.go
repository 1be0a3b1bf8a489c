package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformedCondition means the clause has no AND/OR wrapper the
	// source format can produce. The containing file cannot be trusted.
	ErrMalformedCondition = errors.New("malformed condition")

	// ErrUnsupportedCondition means the clause is well formed but names a
	// field/verb pair with no translation. Only the owning rule is lost.
	ErrUnsupportedCondition = errors.New("unsupported condition")
)

// AllAddresses is the source pseudo-field matching any of AddressFields.
const AllAddresses = "all addresses"

// MatchAll is the clause for rules that apply to every message.
const MatchAll = "ALL"

var (
	andSet = regexp.MustCompile(`AND \((.*?,.*?,.*?)\)`)
	orSet  = regexp.MustCompile(`OR \((.*?,.*?,.*?)\)`)
)

// ParseCondition parses a raw condition such as
//
//	AND (subject,contains,invoice) AND (from,contains,billing)
//
// into a tree. The clause MatchAll yields a nil tree. A clause with
// neither wrapper fails with ErrMalformedCondition; a triplet that cannot
// be translated fails with ErrUnsupportedCondition.
func ParseCondition(raw string) (*Node, error) {
	if strings.TrimSpace(raw) == MatchAll {
		return nil, nil
	}

	combine := And
	triplets := submatches(andSet, raw)
	if len(triplets) == 0 {
		combine = Or
		triplets = submatches(orSet, raw)
	}
	if len(triplets) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedCondition, raw)
	}

	children := make([]*Node, 0, len(triplets))
	for _, t := range triplets {
		n, err := parseTriplet(t)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return combine(children...), nil
}

func submatches(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

// parseTriplet handles one "object,verb,complement" clause.
func parseTriplet(s string) (*Node, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: cannot split %q into object,verb,complement", ErrUnsupportedCondition, s)
	}
	obj, verb, compl := parts[0], parts[1], parts[2]

	switch verb {
	case "contains":
		if n, ok := fieldTest(obj, Contains, compl); ok {
			return n, nil
		}
	case "begins with":
		if n, ok := fieldTest(obj, BeginsWith, compl); ok {
			return n, nil
		}
	case "is greater than", "is less than":
		if obj != string(Size) {
			break
		}
		if _, err := strconv.ParseUint(compl, 10, 64); err != nil {
			return nil, fmt.Errorf("%w: size %q is not a number", ErrUnsupportedCondition, compl)
		}
		op := LargerThan
		if verb == "is less than" {
			op = SmallerThan
		}
		return Predicate(Test{Field: Size, Op: op, Value: compl}), nil
	}

	return nil, fmt.Errorf("%w: %q %q %q", ErrUnsupportedCondition, obj, verb, compl)
}

// fieldTest builds a test on a literal field, or an OR over every
// address field for the AllAddresses pseudo-field.
func fieldTest(obj string, op Op, value string) (*Node, bool) {
	if literalFields[Field(obj)] {
		return Predicate(Test{Field: Field(obj), Op: op, Value: value}), true
	}
	if obj == AllAddresses {
		children := make([]*Node, len(AddressFields))
		for i, f := range AddressFields {
			children[i] = Predicate(Test{Field: f, Op: op, Value: value})
		}
		return Or(children...), true
	}
	return nil, false
}
