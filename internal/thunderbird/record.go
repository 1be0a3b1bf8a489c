package thunderbird

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrMalformedRecord = errors.New("malformed record")

var recordLine = regexp.MustCompile(`^(\w+)="(.*)"$`)

// Record is one key="value" line of a filter file.
type Record struct {
	Key   string
	Value string
}

// ParseRecord parses a single line. Embedded quotes are not unescaped.
func ParseRecord(line string) (Record, error) {
	trimmed := strings.TrimSpace(line)
	m := recordLine.FindStringSubmatch(trimmed)
	if m == nil {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformedRecord, trimmed)
	}
	return Record{Key: m[1], Value: m[2]}, nil
}
