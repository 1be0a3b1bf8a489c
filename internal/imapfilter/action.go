package imapfilter

import (
	"errors"
	"fmt"
	"strings"

	"tb2imapfilter/internal/filter"
	"tb2imapfilter/internal/thunderbird"
)

var ErrUnsupportedAction = errors.New("unsupported action")

// Thunderbird action types with an imapfilter translation.
const (
	ActionDelete       = "Delete"
	ActionMoveToFolder = "Move to folder"
	ActionMarkRead     = "Mark read"
)

type actionSpec struct {
	template string
	// folder is set for actions whose value names a destination folder.
	folder bool
}

var actions = map[string]actionSpec{
	ActionDelete:       {template: "delete_messages()"},
	ActionMoveToFolder: {template: "move_messages(%s)", folder: true},
	ActionMarkRead:     {template: "mark_seen()"},
}

// MapAction returns the method call for a, without the receiver. remotes
// maps server hostnames to their variables and resolves folder values.
func MapAction(a thunderbird.Action, remotes map[string]string) (string, error) {
	act, ok := actions[a.Type]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedAction, a.Type)
	}
	if !act.folder {
		return act.template, nil
	}

	ref, err := folderRef(a.Value, remotes)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(act.template, ref), nil
}

// folderRef renders <remote>['<folder>'] for a folder URI.
func folderRef(raw string, remotes map[string]string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: missing destination folder", thunderbird.ErrUnsupportedActionValue)
	}

	v, err := thunderbird.DecodeActionValue(raw)
	if err != nil {
		return "", err
	}

	switch v.Kind {
	case thunderbird.AddressValue:
		// Recognised, but imapfilter has no notion of moving to an address.
		return "", fmt.Errorf("%w: cannot move messages to address %q", ErrUnsupportedAction, v.Address)
	case thunderbird.FolderValue:
		remote, ok := remotes[v.Server]
		if !ok {
			return "", fmt.Errorf("%w: %s has no filter account in this profile",
				thunderbird.ErrUnsupportedActionValue, v.Account())
		}
		return remote + "[" + luaQuote(v.Folder) + "]", nil
	}
	return "", fmt.Errorf("%w %q", thunderbird.ErrUnsupportedActionValue, raw)
}

// predicate is the imapfilter method selecting messages that pass t.
func predicate(t filter.Test) string {
	switch t.Op {
	case filter.Contains:
		return fmt.Sprintf("contain_%s(%s)", t.Field, luaQuote(t.Value))
	case filter.BeginsWith:
		return fmt.Sprintf("match_%s(%s)", t.Field, luaQuote("^"+quoteRegex(t.Value)+".*"))
	case filter.LargerThan:
		return fmt.Sprintf("is_larger(%s)", t.Value)
	case filter.SmallerThan:
		return fmt.Sprintf("is_smaller(%s)", t.Value)
	}
	panic(fmt.Sprintf("imapfilter: no predicate for %s", t))
}

var regexEscaper = strings.NewReplacer(
	`[`, `\[`,
	`]`, `\]`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`^`, `\^`,
	`$`, `\$`,
	`+`, `\+`,
)

// quoteRegex escapes the characters imapfilter's regex matcher treats
// specially.
func quoteRegex(s string) string {
	return regexEscaper.Replace(s)
}

var luaEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

// luaQuote wraps s in a single-quoted Lua string literal.
func luaQuote(s string) string {
	return "'" + luaEscaper.Replace(s) + "'"
}
