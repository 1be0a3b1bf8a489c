package sieve

import (
	"fmt"
	"strings"

	gosieve "github.com/foxcpp/go-sieve"
)

// Validate parses the script with go-sieve, allowing only the given
// extensions in require.
func Validate(s SieveScript, extensions []string) error {
	options := gosieve.DefaultOptions()
	options.EnabledExtensions = extensions
	if _, err := gosieve.Load(strings.NewReader(s.Content), options); err != nil {
		return fmt.Errorf("sieve script %s: %w", s.Name, err)
	}
	return nil
}
