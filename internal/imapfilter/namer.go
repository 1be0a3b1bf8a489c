package imapfilter

import (
	"fmt"
	"strings"
)

// Namer turns server hostnames into unique Lua variable names. A Namer
// remembers every name it handed out, so use one per generated script.
type Namer struct {
	strip       map[string]bool
	defaultBase string
	used        map[string]bool
}

// reserved are names a remote variable must not take: Lua keywords and
// the globals the generated script reads or assigns.
var reserved = []string{
	"and", "break", "do", "else", "elseif", "end", "false", "for",
	"function", "goto", "if", "in", "local", "nil", "not", "or",
	"repeat", "return", "then", "true", "until", "while",
	"msgs", "options", "IMAP",
}

func NewNamer(stripLabels []string, defaultBase string) *Namer {
	strip := make(map[string]bool, len(stripLabels))
	for _, l := range stripLabels {
		strip[strings.ToLower(l)] = true
	}
	used := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		used[r] = true
	}
	return &Namer{
		strip:       strip,
		defaultBase: defaultBase,
		used:        used,
	}
}

// Name drops the top-level domain and generic labels such as "imap" from
// server, joins the rest with underscores, and appends _2, _3, ... until
// the result is neither reserved nor used before.
//
//	imap.example.com  -> example
//	mail.example.org  -> example_2
//	imap.my-isp.co.uk -> my_isp_co
func (n *Namer) Name(server string) string {
	labels := strings.Split(server, ".")
	labels = labels[:len(labels)-1]

	var kept []string
	for _, l := range labels {
		if n.strip[strings.ToLower(l)] || l == "" {
			continue
		}
		kept = append(kept, identifier(l))
	}

	base := strings.Join(kept, "_")
	if base == "" {
		base = n.defaultBase
	}
	if base[0] >= '0' && base[0] <= '9' {
		base = "_" + base
	}

	candidate := base
	for c := 2; n.used[candidate]; c++ {
		candidate = fmt.Sprintf("%s_%d", base, c)
	}
	n.used[candidate] = true
	return candidate
}

// identifier maps every byte that cannot appear in a Lua name to '_'.
func identifier(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, label)
}
