package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// RemoteConfig holds the connection fields written into every generated
// remote block. Credentials are never taken from the Thunderbird profile;
// these are placeholders the user edits afterwards.
type RemoteConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	SSL      string `toml:"ssl"`
}

// NamingConfig controls how server hostnames become script variables.
type NamingConfig struct {
	StripLabels []string `toml:"strip_labels"` // generic mail subdomain labels, e.g. "imap"
	DefaultBase string   `toml:"default_base"` // used when nothing is left after stripping
}

type RulesConfig struct {
	IncludeDisabled bool `toml:"include_disabled"`
}

// SieveConfig applies to -format sieve only.
type SieveConfig struct {
	Extensions []string `toml:"extensions"` // extensions go-sieve accepts while validating
	Validate   bool     `toml:"validate"`
}

type DoveadmConfig struct {
	Command []string `toml:"command"` // e.g. ["doveadm"] or ["docker", "exec", "-i", "dovecot", "doveadm"]
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

type Config struct {
	Remote  RemoteConfig  `toml:"remote"`
	Naming  NamingConfig  `toml:"naming"`
	Rules   RulesConfig   `toml:"rules"`
	Sieve   SieveConfig   `toml:"sieve"`
	Doveadm DoveadmConfig `toml:"doveadm"`
	Logging LoggingConfig `toml:"logging"`
}

// Default returns the configuration used when no file is found. Keys
// missing from a config file keep these values.
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{
			Username: "USERNAME",
			Password: "PASSWORD",
			SSL:      "auto",
		},
		Naming: NamingConfig{
			StripLabels: []string{"imap", "imaps", "mail"},
			DefaultBase: "remote",
		},
		Sieve: SieveConfig{
			Extensions: []string{"fileinto", "imap4flags", "relational"},
			Validate:   true,
		},
		Doveadm: DoveadmConfig{
			Command: []string{"doveadm"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load tries an explicit path (if given), then ./tb2imapfilter.toml, then
// /etc/tb2imapfilter.toml. If nothing is found, it falls back to Default.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFrom(path)
	}

	candidates := []string{
		"./tb2imapfilter.toml",
		"/etc/tb2imapfilter.toml",
	}

	for _, p := range candidates {
		cfg, err := loadFrom(p)
		if err == nil {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			continue
		}
		// For other errors (permission, parse, etc.) return immediately.
		return nil, err
	}

	return Default(), nil
}

func loadFrom(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	metadata, err := toml.Decode(string(content), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Unknown keys are most likely typos; say so but keep going.
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		log.Printf("WARNING: config %s contains unknown keys that will be ignored:", path)
		for _, key := range undecoded {
			log.Printf("WARNING:   - %s", key)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the converter cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Naming.DefaultBase) == "" {
		return fmt.Errorf("naming.default_base must not be empty")
	}
	if len(c.Doveadm.Command) == 0 {
		return fmt.Errorf("doveadm.command must not be empty")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q: want text or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q: want debug, info, warn or error", c.Logging.Level)
	}
	return nil
}
