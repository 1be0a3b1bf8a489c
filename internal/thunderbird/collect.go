package thunderbird

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tb2imapfilter/internal/logger"
)

// RulesFileName is the per-account filter file inside a profile.
const RulesFileName = "msgFilterRules.dat"

// RuleFile is one discovered filter file and the account box it belongs to.
type RuleFile struct {
	Path string
	Box  string
}

// Discover finds every filter file under <profile>/ImapMail, in lexical
// path order. The box of a file is the name of its directory, which
// Thunderbird names after the IMAP server.
func Discover(profile string) ([]RuleFile, error) {
	fi, err := os.Stat(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", profile, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("profile %s is not a directory", profile)
	}

	root := filepath.Join(profile, "ImapMail")
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("no ImapMail directory in profile %s", profile)
	}

	var files []RuleFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != RulesFileName {
			return nil
		}
		files = append(files, RuleFile{
			Path: path,
			Box:  filepath.Base(filepath.Dir(path)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// Collect parses every file into one rule set. A later rule replaces an
// earlier one with the same name, even across accounts. Boxes are
// returned distinct, in the order their files were read.
func Collect(files []RuleFile) (*RuleSet, []string, error) {
	all := NewRuleSet()
	var boxes []string
	seenBox := map[string]bool{}

	for _, rf := range files {
		rules, err := parseFile(rf)
		if err != nil {
			return nil, nil, err
		}

		for _, r := range rules.Rules() {
			if old, ok := all.Get(r.Name); ok {
				logger.Warn("rule overwritten",
					"rule", r.Name,
					"previous_box", old.Box,
					"box", r.Box,
				)
			}
			all.Put(r)
		}

		if !seenBox[rf.Box] {
			seenBox[rf.Box] = true
			boxes = append(boxes, rf.Box)
		}
		logger.Debug("read filter file", "path", rf.Path, "box", rf.Box, "rules", rules.Len())
	}

	return all, boxes, nil
}

func parseFile(rf RuleFile) (*RuleSet, error) {
	f, err := os.Open(rf.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rules, err := ParseRules(f, rf.Box)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rf.Path, err)
	}
	return rules, nil
}
