// Package sieve renders Thunderbird rules as Sieve (RFC 5228) scripts,
// one script per IMAP account, for servers that filter on delivery.
package sieve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"tb2imapfilter/internal/filter"
	"tb2imapfilter/internal/thunderbird"
)

var ErrUnsupportedAction = errors.New("unsupported sieve action")

// Result holds one combined script per account plus the rules left out.
type Result struct {
	Scripts  []SieveScript
	Rendered int
	Skipped  []thunderbird.Skip
}

// ConvertRules converts every rule and merges the rules of each box into
// a script named after the box. Boxes without rules produce no script.
func ConvertRules(rules *thunderbird.RuleSet, boxes []string, includeDisabled bool) Result {
	var res Result
	perBox := map[string][]SieveScript{}

	for _, r := range rules.Rules() {
		sc, err := ConvertRule(r, includeDisabled)
		if err != nil {
			res.Skipped = append(res.Skipped, thunderbird.Skip{Rule: r.Name, Box: r.Box, Reason: err})
			continue
		}
		perBox[r.Box] = append(perBox[r.Box], sc)
		res.Rendered++
	}

	for _, box := range boxes {
		scripts := perBox[box]
		if len(scripts) == 0 {
			continue
		}
		res.Scripts = append(res.Scripts, CombineScripts(box, scripts))
		delete(perBox, box)
	}
	return res
}

// ConvertRule renders a single rule as a standalone script.
func ConvertRule(r *thunderbird.Rule, includeDisabled bool) (SieveScript, error) {
	if err := thunderbird.Renderable(r, includeDisabled); err != nil {
		return SieveScript{}, err
	}

	cond, err := buildCondition(r.Condition, 0)
	if err != nil {
		return SieveScript{}, err
	}

	usedExt := map[string]bool{}
	var body []string
	for _, a := range r.Actions {
		cmd, ext, err := buildAction(a, r.Box)
		if err != nil {
			return SieveScript{}, err
		}
		if ext != "" {
			usedExt[ext] = true
		}
		body = append(body, cmd)
	}

	var sb strings.Builder

	// ── require [...] header ──────────────────────────────────────────
	if len(usedExt) > 0 {
		var reqs []string
		for k := range usedExt {
			reqs = append(reqs, quoteString(k))
		}
		sort.Strings(reqs)
		sb.WriteString("require [")
		sb.WriteString(strings.Join(reqs, ", "))
		sb.WriteString("];\n\n")
	}

	// ── IF block ───────────────────────────────────────────────────────
	sb.WriteString("if ")
	sb.WriteString(cond)
	sb.WriteString(" {\n")
	for _, cmd := range body {
		sb.WriteString("    ")
		sb.WriteString(cmd)
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")

	return SieveScript{Name: r.Name, Content: sb.String()}, nil
}

// buildCondition renders a condition tree as a Sieve test. Groups with a
// single child are transparent, as in the imapfilter output.
func buildCondition(n *filter.Node, depth int) (string, error) {
	if n == nil {
		return "true", nil
	}
	if n.Kind == filter.KindTest {
		return buildTest(n.Test)
	}

	switch len(n.Children) {
	case 0:
		if n.Kind == filter.KindOr {
			return "false", nil
		}
		return "true", nil
	case 1:
		return buildCondition(n.Children[0], depth)
	}

	join := "allof"
	if n.Kind == filter.KindOr {
		join = "anyof"
	}

	// Pretty-print:
	// anyof (
	//     cond1,
	//     cond2
	// )
	pad := strings.Repeat("    ", depth+1)
	var b strings.Builder
	b.WriteString(join)
	b.WriteString(" (\n")
	for i, c := range n.Children {
		s, err := buildCondition(c, depth+1)
		if err != nil {
			return "", err
		}
		b.WriteString(pad)
		b.WriteString(s)
		if i < len(n.Children)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("    ", depth))
	b.WriteString(")")
	return b.String(), nil
}

var headerNames = map[filter.Field]string{
	filter.Subject: "Subject",
	filter.From:    "From",
	filter.To:      "To",
	filter.Cc:      "Cc",
	filter.Bcc:     "Bcc",
}

func buildTest(t filter.Test) (string, error) {
	switch t.Op {
	case filter.LargerThan:
		return "size :over " + t.Value, nil
	case filter.SmallerThan:
		return "size :under " + t.Value, nil
	}

	hdr, ok := headerNames[t.Field]
	if !ok {
		return "", fmt.Errorf("%w: %s has no sieve test without the body extension",
			filter.ErrUnsupportedCondition, t)
	}

	switch t.Op {
	case filter.Contains:
		return fmt.Sprintf("header :contains %s %s", quoteString(hdr), quoteString(t.Value)), nil
	case filter.BeginsWith:
		return fmt.Sprintf("header :matches %s %s", quoteString(hdr), quoteString(escapeWildcards(t.Value)+"*")), nil
	}
	return "", fmt.Errorf("%w: %s", filter.ErrUnsupportedCondition, t)
}

// buildAction returns the command for a and the extension it needs.
func buildAction(a thunderbird.Action, box string) (cmd, ext string, err error) {
	switch a.Type {
	case "Delete":
		return "discard;", "", nil
	case "Mark read":
		return fmt.Sprintf("addflag %s;", quoteString(`\Seen`)), "imap4flags", nil
	case "Move to folder":
		if a.Value == "" {
			return "", "", fmt.Errorf("%w: missing destination folder", thunderbird.ErrUnsupportedActionValue)
		}
		v, err := thunderbird.DecodeActionValue(a.Value)
		if err != nil {
			return "", "", err
		}
		if v.Kind != thunderbird.FolderValue {
			return "", "", fmt.Errorf("%w: cannot file into address %q", ErrUnsupportedAction, v.Address)
		}
		if v.Server != box {
			return "", "", fmt.Errorf("%w: folder %q is on another account (%s)", ErrUnsupportedAction, v.Folder, v.Account())
		}
		return fmt.Sprintf("fileinto %s;", quoteString(v.Folder)), "fileinto", nil
	}
	return "", "", fmt.Errorf("%w %q", ErrUnsupportedAction, a.Type)
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// escapeWildcards makes s match literally under :matches.
func escapeWildcards(s string) string {
	return wildcardEscaper.Replace(s)
}

// quoteString escapes a Go string into a Sieve double-quoted string
func quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
