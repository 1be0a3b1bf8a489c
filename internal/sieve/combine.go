package sieve

import (
	"fmt"
	"sort"
	"strings"
)

// CombineScripts merges per-rule scripts into a single script:
//
// - Deduplicates all "require [...]" lines and moves them to the top.
// - Keeps every rule's IF block, in order, each under a "# Rule:" comment.
func CombineScripts(name string, scripts []SieveScript) SieveScript {
	reqSet := map[string]bool{}
	var bodyChunks []string

	for _, sc := range scripts {
		var kept []string

		for _, line := range strings.Split(sc.Content, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "require [") {
				for _, ext := range requiredExtensions(trimmed) {
					reqSet[ext] = true
				}
				continue // drop this require from the body
			}
			kept = append(kept, line)
		}

		content := strings.TrimSpace(strings.Join(kept, "\n"))
		if content == "" {
			continue
		}

		bodyChunks = append(bodyChunks, fmt.Sprintf("# Rule: %s", sc.Name), content, "")
	}

	var b strings.Builder

	if len(reqSet) > 0 {
		var mods []string
		for m := range reqSet {
			mods = append(mods, quoteString(m))
		}
		sort.Strings(mods)

		b.WriteString("require [")
		b.WriteString(strings.Join(mods, ", "))
		b.WriteString("];\n\n")
	}

	b.WriteString(strings.Join(bodyChunks, "\n"))

	return SieveScript{
		Name:    name,
		Content: b.String(),
	}
}

// requiredExtensions parses `require ["fileinto", "imap4flags"];`.
func requiredExtensions(line string) []string {
	start := strings.Index(line, "[")
	end := strings.Index(line, "]")
	if start == -1 || end <= start {
		return nil
	}

	var exts []string
	for _, p := range strings.Split(line[start+1:end], ",") {
		m := strings.Trim(strings.TrimSpace(p), `"`)
		if m != "" {
			exts = append(exts, m)
		}
	}
	return exts
}
