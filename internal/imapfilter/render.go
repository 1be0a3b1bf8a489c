// Package imapfilter renders Thunderbird rules as an imapfilter Lua
// configuration: one IMAP {} declaration per account, then one
// select-and-act statement pair per action of every rule.
package imapfilter

import (
	"fmt"
	"strings"

	"tb2imapfilter/internal/config"
	"tb2imapfilter/internal/filter"
	"tb2imapfilter/internal/thunderbird"
)

const remoteTemplate = `%s = IMAP {
    server = %s,
    username = %s,
    password = %s,
    ssl = %s
}
`

type Options struct {
	Remote          config.RemoteConfig
	Naming          config.NamingConfig
	IncludeDisabled bool
}

// OptionsFromConfig picks the imapfilter settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Remote:          cfg.Remote,
		Naming:          cfg.Naming,
		IncludeDisabled: cfg.Rules.IncludeDisabled,
	}
}

// Result is a rendered script plus what was left out of it.
type Result struct {
	Script string
	// Remotes maps each server hostname to its variable name.
	Remotes  map[string]string
	Rendered int
	Skipped  []thunderbird.Skip
}

// Render declares one remote per box, in order, then renders every rule
// in set order. A rule that cannot be translated is left out entirely and
// reported in Result.Skipped; it never stops the other rules.
func Render(rules *thunderbird.RuleSet, boxes []string, opts Options) Result {
	namer := NewNamer(opts.Naming.StripLabels, opts.Naming.DefaultBase)
	res := Result{Remotes: make(map[string]string, len(boxes))}

	var blocks []string
	for _, server := range boxes {
		if _, ok := res.Remotes[server]; ok {
			continue
		}
		name := namer.Name(server)
		res.Remotes[server] = name
		blocks = append(blocks, fmt.Sprintf(remoteTemplate,
			name,
			luaQuote(server),
			luaQuote(opts.Remote.Username),
			luaQuote(opts.Remote.Password),
			luaQuote(opts.Remote.SSL),
		))
	}

	for _, r := range rules.Rules() {
		block, err := renderRule(r, res.Remotes, opts.IncludeDisabled)
		if err != nil {
			res.Skipped = append(res.Skipped, thunderbird.Skip{Rule: r.Name, Box: r.Box, Reason: err})
			continue
		}
		blocks = append(blocks, block)
		res.Rendered++
	}

	res.Script = strings.Join(blocks, "\n\n")
	return res
}

// RenderCondition renders a rule condition against base. A nil condition
// selects every message.
func RenderCondition(cond *filter.Node, base string) string {
	if cond == nil {
		return base + ":select_all()"
	}
	return filter.LuaStyle.Render(cond, base, predicate)
}

func renderRule(r *thunderbird.Rule, remotes map[string]string, includeDisabled bool) (string, error) {
	if err := thunderbird.Renderable(r, includeDisabled); err != nil {
		return "", err
	}

	remote, ok := remotes[r.Box]
	if !ok {
		return "", fmt.Errorf("no remote declared for account %q", r.Box)
	}
	cond := RenderCondition(r.Condition, remote+".INBOX")

	stmts := make([]string, 0, len(r.Actions))
	for _, a := range r.Actions {
		call, err := MapAction(a, remotes)
		if err != nil {
			return "", err
		}
		stmts = append(stmts, "msgs = "+cond+"\nmsgs:"+call)
	}
	return strings.Join(stmts, "\n"), nil
}
