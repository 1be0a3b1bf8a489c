package sieve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tb2imapfilter/internal/config"
	"tb2imapfilter/internal/thunderbird"
)

func TestValidateGeneratedScript(t *testing.T) {
	rules, err := thunderbird.ParseRules(strings.NewReader(`name="Invoices"
condition="OR (subject,contains,invoice) OR (size,is greater than,100000)"
action="Mark read"
action="Move to folder"
actionValue="imap://user@imap.example.com/Invoices"
name="Noise"
condition="AND (from,begins with,noreply)"
action="Delete"
`), "imap.example.com")
	require.NoError(t, err)

	res := ConvertRules(rules, []string{"imap.example.com"}, false)
	require.Len(t, res.Scripts, 1)

	assert.NoError(t, Validate(res.Scripts[0], config.Default().Sieve.Extensions))
}

func TestValidateRejects(t *testing.T) {
	exts := []string{"fileinto"}

	err := Validate(SieveScript{Name: "bad", Content: "if header :contains \"Subject\" {\n"}, exts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sieve script bad")

	err = Validate(SieveScript{Name: "ext", Content: "require [\"imap4flags\"];\naddflag \"\\\\Seen\";\n"}, exts)
	assert.Error(t, err)
}
