package sieve

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteScripts writes each script to dest/<name>.sieve and returns the
// paths written, in order.
func WriteScripts(scripts []SieveScript, dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, err
	}

	var paths []string
	for _, s := range scripts {
		path := filepath.Join(dest, fmt.Sprintf("%s.sieve", s.Name))
		if err := os.WriteFile(path, []byte(s.Content), 0644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
