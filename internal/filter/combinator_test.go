package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func testLeaf(t Test) string {
	return "t_" + string(t.Field) + "(" + t.Value + ")"
}

func TestRenderLeaf(t *testing.T) {
	n := Predicate(Test{Field: Subject, Op: Contains, Value: "x"})
	assert.Equal(t, "box.INBOX:t_subject(x)", LuaStyle.Render(n, "box.INBOX", testLeaf))
}

func TestRenderSingleChildIsTransparent(t *testing.T) {
	leaf := Predicate(Test{Field: Subject, Op: Contains, Value: "x"})
	alone := LuaStyle.Render(leaf, "b", testLeaf)

	assert.Equal(t, alone, LuaStyle.Render(And(leaf), "b", testLeaf))
	assert.Equal(t, alone, LuaStyle.Render(Or(leaf), "b", testLeaf))
	assert.Equal(t, alone, LuaStyle.Render(And(Or(And(leaf))), "b", testLeaf))
}

func TestRenderEmptyGroup(t *testing.T) {
	assert.Equal(t, "()", LuaStyle.Render(And(), "b", testLeaf))
	assert.Equal(t, "()", LuaStyle.Render(Or(), "b", testLeaf))
}

func TestRenderGroups(t *testing.T) {
	a := Predicate(Test{Field: From, Value: "a"})
	b := Predicate(Test{Field: To, Value: "b"})
	c := Predicate(Test{Field: Cc, Value: "c"})

	assert.Equal(t,
		"(b:t_from(a)\n        * b:t_to(b))",
		LuaStyle.Render(And(a, b), "b", testLeaf))

	assert.Equal(t,
		"(b:t_from(a)\n        + b:t_to(b))",
		LuaStyle.Render(Or(a, b), "b", testLeaf))

	assert.Equal(t,
		"(b:t_cc(c)\n        * (b:t_from(a)\n         + b:t_to(b)))",
		LuaStyle.Render(And(c, Or(a, b)), "b", testLeaf))
}

func TestRenderIsIdempotent(t *testing.T) {
	tree, err := ParseCondition("AND (all addresses,contains,x) AND (subject,begins with,y) AND (size,is less than,3)")
	if err != nil {
		t.Fatalf("ParseCondition: %v", err)
	}
	first := LuaStyle.Render(tree, "b", testLeaf)
	second := LuaStyle.Render(tree, "b", testLeaf)
	assert.Equal(t, first, second)
}

func TestNodeMarshalYAML(t *testing.T) {
	tree := And(
		Predicate(Test{Field: Subject, Op: Contains, Value: "invoice"}),
		Or(Predicate(Test{Field: Size, Op: LargerThan, Value: "10"})),
	)
	out, err := yaml.Marshal(tree)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, map[string]interface{}{
		"and": []interface{}{
			`subject contains "invoice"`,
			map[string]interface{}{"or": []interface{}{`size is greater than "10"`}},
		},
	}, decoded)
}
