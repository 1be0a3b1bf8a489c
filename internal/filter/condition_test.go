package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *Node
	}{
		{
			name: "single and triplet",
			raw:  "AND (subject,contains,invoice)",
			want: And(Predicate(Test{Field: Subject, Op: Contains, Value: "invoice"})),
		},
		{
			name: "several and triplets keep order",
			raw:  "AND (subject,contains,invoice) AND (from,begins with,billing)",
			want: And(
				Predicate(Test{Field: Subject, Op: Contains, Value: "invoice"}),
				Predicate(Test{Field: From, Op: BeginsWith, Value: "billing"}),
			),
		},
		{
			name: "or clause",
			raw:  "OR (to,contains,me) OR (cc,contains,me)",
			want: Or(
				Predicate(Test{Field: To, Op: Contains, Value: "me"}),
				Predicate(Test{Field: Cc, Op: Contains, Value: "me"}),
			),
		},
		{
			name: "all addresses expands to an or over address fields",
			raw:  "AND (all addresses,contains,spam)",
			want: And(Or(
				Predicate(Test{Field: From, Op: Contains, Value: "spam"}),
				Predicate(Test{Field: To, Op: Contains, Value: "spam"}),
				Predicate(Test{Field: Cc, Op: Contains, Value: "spam"}),
				Predicate(Test{Field: Bcc, Op: Contains, Value: "spam"}),
			)),
		},
		{
			name: "size comparisons",
			raw:  "OR (size,is greater than,5000) OR (size,is less than,10)",
			want: Or(
				Predicate(Test{Field: Size, Op: LargerThan, Value: "5000"}),
				Predicate(Test{Field: Size, Op: SmallerThan, Value: "10"}),
			),
		},
		{
			name: "match all",
			raw:  "ALL",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCondition(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConditionErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"no wrapper", "subject,contains,invoice", ErrMalformedCondition},
		{"unknown wrapper", "NOT (subject,contains,invoice)", ErrMalformedCondition},
		{"empty", "", ErrMalformedCondition},
		{"unsupported verb", "AND (subject,is,invoice)", ErrUnsupportedCondition},
		{"verb is case sensitive", "AND (subject,Contains,invoice)", ErrUnsupportedCondition},
		{"unsupported field", "AND (date,contains,2024)", ErrUnsupportedCondition},
		{"begins with on size", "AND (size,begins with,1)", ErrUnsupportedCondition},
		{"size with text", "AND (size,is greater than,big)", ErrUnsupportedCondition},
		{"comma inside complement", "AND (subject,contains,a,b)", ErrUnsupportedCondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCondition(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnsupportedConditionNamesTriplet(t *testing.T) {
	_, err := ParseCondition("AND (subject,ends with,.pdf)")
	require.ErrorIs(t, err, ErrUnsupportedCondition)
	assert.Contains(t, err.Error(), "subject")
	assert.Contains(t, err.Error(), "ends with")
	assert.Contains(t, err.Error(), ".pdf")
}
