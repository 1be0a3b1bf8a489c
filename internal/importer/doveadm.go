package importer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tb2imapfilter/internal/logger"
)

var ErrUserNotFound = errors.New("mailbox user not found on target")

// InstallConfig describes where generated Sieve scripts go.
type InstallConfig struct {
	User       string   // mailbox address on the Dovecot server
	DoveadmCmd []string // e.g. {"doveadm"} or {"docker","exec","-i","ctr","doveadm"}
}

// InstallSieve uploads every script file for cfg.User with doveadm and
// returns the names it installed. A single installed script is also
// activated; with several, activation is left to the user because
// Dovecot keeps only one active script.
func InstallSieve(cfg InstallConfig, paths []string) ([]string, error) {
	if cfg.User == "" {
		return nil, fmt.Errorf("InstallSieve: User is empty")
	}
	if len(cfg.DoveadmCmd) == 0 {
		return nil, fmt.Errorf("InstallSieve: DoveadmCmd is empty")
	}

	exists, err := doveadmUserExists(cfg.DoveadmCmd, cfg.User)
	if err != nil {
		return nil, fmt.Errorf("doveadm user check for %s: %w", cfg.User, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, cfg.User)
	}

	var installed []string
	for _, p := range paths {
		name := scriptName(p)
		if err := doveadmPut(cfg.DoveadmCmd, cfg.User, name, p); err != nil {
			return installed, fmt.Errorf("importing sieve for %s from %s: %w", cfg.User, p, err)
		}
		logger.Info("installed sieve script", "user", cfg.User, "script", name, "path", p)
		installed = append(installed, name)
	}

	switch len(installed) {
	case 0:
	case 1:
		if err := doveadmActivate(cfg.DoveadmCmd, cfg.User, installed[0]); err != nil {
			return installed, fmt.Errorf("activating sieve %s for %s: %w", installed[0], cfg.User, err)
		}
		logger.Info("activated sieve script", "user", cfg.User, "script", installed[0])
	default:
		logger.Warn("several scripts installed, none activated",
			"user", cfg.User,
			"scripts", strings.Join(installed, ","),
		)
	}
	return installed, nil
}

// scriptName is the file name without its .sieve suffix.
func scriptName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".sieve")
}

func doveadm(doveadmCmd []string, args ...string) *exec.Cmd {
	full := append(append([]string{}, doveadmCmd[1:]...), args...)
	return exec.Command(doveadmCmd[0], full...)
}

func doveadmUserExists(doveadmCmd []string, addr string) (bool, error) {
	cmd := doveadm(doveadmCmd, "user", "-u", addr)
	if err := cmd.Run(); err != nil {
		// ExitError means "user not found" or similar
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func doveadmPut(doveadmCmd []string, addr, scriptName, sievePath string) error {
	data, err := os.ReadFile(sievePath)
	if err != nil {
		return fmt.Errorf("read sieve file: %w", err)
	}

	cmd := doveadm(doveadmCmd, "sieve", "put", "-u", addr, scriptName)
	cmd.Stdin = bytes.NewReader(data)
	var out bytes.Buffer
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("doveadm sieve put failed: %v, stderr=%s", err, out.String())
	}
	return nil
}

func doveadmActivate(doveadmCmd []string, addr, scriptName string) error {
	cmd := doveadm(doveadmCmd, "sieve", "activate", "-u", addr, scriptName)
	var out bytes.Buffer
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("doveadm sieve activate failed: %v, stderr=%s", err, out.String())
	}
	return nil
}
