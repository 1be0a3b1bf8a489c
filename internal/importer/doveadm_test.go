package importer

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDoveadm returns a command that appends its arguments (and stdin for
// "sieve put") to a log file, and fails "user" lookups for unknown@.
func fakeDoveadm(t *testing.T) ([]string, string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	logPath := filepath.Join(t.TempDir(), "calls.log")
	script := `
case "$*" in
  *unknown@*) exit 67 ;;
esac
echo "$*" >> "` + logPath + `"
if [ "$1" = "sieve" ] && [ "$2" = "put" ]; then cat >> "` + logPath + `"; fi
`
	return []string{"sh", "-c", script, "doveadm"}, logPath
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestInstallSieveSingleScriptIsActivated(t *testing.T) {
	cmd, logPath := fakeDoveadm(t)
	p := writeScript(t, t.TempDir(), "imap.example.com.sieve", "discard;\n")

	names, err := InstallSieve(InstallConfig{User: "me@example.com", DoveadmCmd: cmd}, []string{p})
	require.NoError(t, err)
	assert.Equal(t, []string{"imap.example.com"}, names)

	calls, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"user -u me@example.com",
		"sieve put -u me@example.com imap.example.com",
		"discard;",
		"sieve activate -u me@example.com imap.example.com",
		"",
	}, "\n"), string(calls))
}

func TestInstallSieveSeveralScriptsAreNotActivated(t *testing.T) {
	cmd, logPath := fakeDoveadm(t)
	dir := t.TempDir()
	paths := []string{
		writeScript(t, dir, "a.sieve", "keep;\n"),
		writeScript(t, dir, "b.sieve", "keep;\n"),
	}

	names, err := InstallSieve(InstallConfig{User: "me@example.com", DoveadmCmd: cmd}, paths)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	calls, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(calls), "activate")
}

func TestInstallSieveUnknownUser(t *testing.T) {
	cmd, _ := fakeDoveadm(t)
	p := writeScript(t, t.TempDir(), "a.sieve", "keep;\n")

	_, err := InstallSieve(InstallConfig{User: "unknown@example.com", DoveadmCmd: cmd}, []string{p})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestInstallSieveConfigErrors(t *testing.T) {
	_, err := InstallSieve(InstallConfig{DoveadmCmd: []string{"doveadm"}}, nil)
	assert.Error(t, err)
	_, err = InstallSieve(InstallConfig{User: "me@example.com"}, nil)
	assert.Error(t, err)
}
