// Package filter holds the target-neutral condition model shared by every
// output backend: a small tree of field tests combined with AND/OR nodes.
package filter

import (
	"fmt"
	"strings"
)

// Field is a message part a Test is applied to.
type Field string

const (
	Body    Field = "body"
	Subject Field = "subject"
	From    Field = "from"
	To      Field = "to"
	Cc      Field = "cc"
	Bcc     Field = "bcc"
	Size    Field = "size"
)

// AddressFields are the address-bearing headers searched by the
// "all addresses" pseudo-field, in rendering order.
var AddressFields = []Field{From, To, Cc, Bcc}

var literalFields = map[Field]bool{
	Body:    true,
	Subject: true,
	From:    true,
	To:      true,
	Cc:      true,
	Bcc:     true,
}

// Op is the comparison a Test performs.
type Op int

const (
	Contains Op = iota
	BeginsWith
	LargerThan
	SmallerThan
)

func (o Op) String() string {
	switch o {
	case Contains:
		return "contains"
	case BeginsWith:
		return "begins with"
	case LargerThan:
		return "is greater than"
	case SmallerThan:
		return "is less than"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Test is a single atomic predicate against one message field.
// Value is kept raw; each backend escapes it for its own grammar.
type Test struct {
	Field Field
	Op    Op
	Value string
}

func (t Test) String() string {
	return fmt.Sprintf("%s %s %q", t.Field, t.Op, t.Value)
}

// Kind tags a Node.
type Kind int

const (
	KindTest Kind = iota
	KindAnd
	KindOr
)

// Node is one element of a condition tree. Test is set for KindTest,
// Children for KindAnd and KindOr.
type Node struct {
	Kind     Kind
	Test     Test
	Children []*Node
}

func Predicate(t Test) *Node {
	return &Node{Kind: KindTest, Test: t}
}

func And(children ...*Node) *Node {
	return &Node{Kind: KindAnd, Children: children}
}

func Or(children ...*Node) *Node {
	return &Node{Kind: KindOr, Children: children}
}

func (n *Node) String() string {
	if n == nil {
		return "ALL"
	}
	switch n.Kind {
	case KindTest:
		return n.Test.String()
	case KindAnd, KindOr:
		op := " AND "
		if n.Kind == KindOr {
			op = " OR "
		}
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, op) + ")"
	}
	return "?"
}

// MarshalYAML renders the tree as nested {and: [...]} / {or: [...]} maps
// with tests as plain strings.
func (n *Node) MarshalYAML() (interface{}, error) {
	if n == nil {
		return "ALL", nil
	}
	switch n.Kind {
	case KindTest:
		return n.Test.String(), nil
	case KindAnd:
		return map[string][]*Node{"and": n.Children}, nil
	case KindOr:
		return map[string][]*Node{"or": n.Children}, nil
	}
	return nil, fmt.Errorf("unknown node kind %d", n.Kind)
}

// Style is the spelling of a combinator tree in an expression-based
// target language.
type Style struct {
	And    string // operator joining AND children
	Or     string // operator joining OR children
	Empty  string // token for a group with no children
	Call   string // separator between base and predicate fragment
	Indent int    // starting indentation of the outermost group
}

// LuaStyle is imapfilter's set algebra: '*' intersects, '+' unites.
var LuaStyle = Style{And: "*", Or: "+", Empty: "()", Call: ":", Indent: 4}

// LeafFunc returns the target fragment for one Test.
type LeafFunc func(Test) string

// Render turns the tree into a single expression where each leaf is
// applied to base. Groups with a single child are transparent. Rendering
// has no side effects, so the same tree always yields the same text.
func (s Style) Render(n *Node, base string, leaf LeafFunc) string {
	return s.render(n, base, s.Indent, leaf)
}

func (s Style) render(n *Node, base string, indent int, leaf LeafFunc) string {
	if n.Kind == KindTest {
		return base + s.Call + leaf(n.Test)
	}

	switch len(n.Children) {
	case 0:
		return s.Empty
	case 1:
		return s.render(n.Children[0], base, indent, leaf)
	}

	op := s.And
	if n.Kind == KindOr {
		op = s.Or
	}
	sep := "\n" + strings.Repeat(" ", indent+4) + op + " "

	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = s.render(c, base, indent+1, leaf)
	}
	return "(" + strings.Join(parts, sep) + ")"
}
