package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tb2imapfilter/internal/config"
	"tb2imapfilter/internal/imapfilter"
	"tb2imapfilter/internal/importer"
	"tb2imapfilter/internal/logger"
	"tb2imapfilter/internal/metrics"
	"tb2imapfilter/internal/sieve"
	"tb2imapfilter/internal/thunderbird"
)

const usage = `Usage: tb2imapfilter [flags] <thunderbird-profile>

Reads every ImapMail/<server>/msgFilterRules.dat of the profile and writes
an imapfilter configuration to stdout, or Sieve scripts to -dest.

Flags:
`

type options struct {
	configPath  string
	format      string
	dest        string
	dumpRules   string
	metricsFile string
	installUser string
	profile     string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Fatal("conversion failed", "err", err)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("tb2imapfilter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&o.configPath, "config", "", "Path to tb2imapfilter.toml (default: ./tb2imapfilter.toml, then /etc)")
	fs.StringVar(&o.format, "format", "imapfilter", "Output format: imapfilter or sieve")
	fs.StringVar(&o.dest, "dest", "./sieve", "Destination folder for sieve scripts")
	fs.StringVar(&o.dumpRules, "dump-rules", "", "Also write the parsed rules as YAML to this file ('-' for stderr)")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "Write run counters in node_exporter textfile format")
	fs.StringVar(&o.installUser, "install-user", "", "Install the sieve scripts for this mailbox with doveadm")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, fmt.Errorf("expected exactly one profile directory, got %d arguments", fs.NArg())
	}
	switch o.format {
	case "imapfilter", "sieve":
	default:
		return o, fmt.Errorf("-format %q: want imapfilter or sieve", o.format)
	}
	if o.installUser != "" && o.format != "sieve" {
		return o, fmt.Errorf("-install-user needs -format sieve")
	}

	profile, err := expandHome(fs.Arg(0))
	if err != nil {
		return o, err
	}
	o.profile = profile
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Initialize(cfg.Logging, stderr)

	// ── Read the profile ──
	files, err := thunderbird.Discover(opts.profile)
	if err != nil {
		return err
	}
	rules, boxes, err := thunderbird.Collect(files)
	if err != nil {
		return err
	}
	logger.Info("rules collected", "files", len(files), "accounts", len(boxes), "rules", rules.Len())

	m := metrics.NewRun()
	m.RulesParsed.Add(float64(rules.Len()))

	if opts.dumpRules != "" {
		if err := dumpRules(opts.dumpRules, rules, stderr); err != nil {
			return fmt.Errorf("dumping rules: %w", err)
		}
	}

	// ── Generate ──
	var (
		rendered int
		skipped  []thunderbird.Skip
	)
	switch opts.format {
	case "imapfilter":
		res := imapfilter.Render(rules, boxes, imapfilter.OptionsFromConfig(cfg))
		if _, err := io.WriteString(stdout, res.Script+"\n"); err != nil {
			return err
		}
		m.Remotes.Set(float64(len(res.Remotes)))
		rendered, skipped = res.Rendered, res.Skipped

	case "sieve":
		res := sieve.ConvertRules(rules, boxes, cfg.Rules.IncludeDisabled)
		if cfg.Sieve.Validate {
			for _, s := range res.Scripts {
				if err := sieve.Validate(s, cfg.Sieve.Extensions); err != nil {
					return err
				}
			}
		}
		paths, err := sieve.WriteScripts(res.Scripts, opts.dest)
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.Info("wrote sieve script", "path", p)
		}
		if opts.installUser != "" {
			_, err := importer.InstallSieve(importer.InstallConfig{
				User:       opts.installUser,
				DoveadmCmd: cfg.Doveadm.Command,
			}, paths)
			if err != nil {
				return err
			}
		}
		m.Remotes.Set(float64(len(res.Scripts)))
		rendered, skipped = res.Rendered, res.Skipped
	}

	reportSkips(skipped)
	m.RulesRendered.Add(float64(rendered))
	m.RecordSkips(skipped)
	logger.Info("conversion finished", "format", opts.format, "rendered", rendered, "skipped", len(skipped))

	if opts.metricsFile != "" {
		if err := m.WriteTextfile(opts.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// reportSkips logs every rule left out. Disabled and empty rules are
// expected; anything else means a rule the user has to port by hand.
func reportSkips(skips []thunderbird.Skip) {
	for _, s := range skips {
		if errors.Is(s.Reason, thunderbird.ErrRuleDisabled) || errors.Is(s.Reason, thunderbird.ErrNoActions) {
			logger.Info("skipping rule", "rule", s.Rule, "box", s.Box, "reason", s.Reason)
			continue
		}
		logger.Warn("ignoring rule", "rule", s.Rule, "box", s.Box, "reason", s.Reason)
	}
}

func dumpRules(path string, rules *thunderbird.RuleSet, stderr io.Writer) error {
	if path == "-" {
		return thunderbird.DumpYAML(stderr, rules)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := thunderbird.DumpYAML(f, rules); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// expandHome replaces a leading ~ with the current user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
