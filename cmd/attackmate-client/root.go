package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smnsjas/go-attackmate/client"
	internallog "github.com/smnsjas/go-attackmate/internal/log"
	"github.com/smnsjas/go-attackmate/rest/auth"
)

const defaultServerURL = "https://localhost:8445"

// exitError reports a failure that has already been logged or printed.
type exitError struct {
	msg string
}

func (e *exitError) Error() string { return e.msg }

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	serverURL string
	username  string
	password  string
	cacert    string
	timeout   time.Duration
	proxy     string
	config    string
	logLevel  string
	logFile   string
	logFormat string
	auditLog  string
}

// app carries process I/O and state shared by the subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	getenv         func(string) string
	defaultProfile string

	// cache is handed to every client; nil means the process-wide cache.
	cache *auth.TokenCache

	flags    globalFlags
	settings settings
	logger   *slog.Logger
	audit    *slog.Logger
	closers  []io.Closer
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		getenv: func(string) string { return "" },
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "attackmate-client",
		Short:         "AttackMate playbook client for remote API execution",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	f := root.PersistentFlags()
	f.StringVar(&a.flags.serverURL, "server-url", defaultServerURL, "Base URL of the AttackMate API server")
	f.StringVar(&a.flags.username, "username", "", "API username for authentication")
	f.StringVar(&a.flags.password, "password", "", "API password (use ATTACKMATE_PASSWORD instead)")
	f.StringVar(&a.flags.cacert, "cacert", "", "Path to the server's CA certificate for verification")
	f.DurationVar(&a.flags.timeout, "timeout", client.DefaultTimeout, "Per-request timeout")
	f.StringVar(&a.flags.proxy, "proxy", "", `HTTP proxy URL ("direct" disables the environment proxy)`)
	f.StringVar(&a.flags.config, "config", "", "Path to a TOML profile")
	f.StringVar(&a.flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.StringVar(&a.flags.logFile, "log-file", "", "Write logs to this file (rotated) instead of stderr")
	f.StringVar(&a.flags.logFormat, "log-format", "text", "Log format: text or json")
	f.StringVar(&a.flags.auditLog, "audit-log", "", "Write security events as JSON to this file")

	root.AddCommand(newPlaybookCmd(a))
	root.AddCommand(newCommandCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}

// setup resolves settings and opens the log sinks.
func (a *app) setup(cmd *cobra.Command) error {
	profilePath := findProfile(a.flags.config, a.getenv, a.defaultProfile)

	var profile *Profile
	if profilePath != "" {
		p, err := LoadProfile(profilePath)
		if err != nil {
			return err
		}
		profile = p
	}

	s, err := resolveSettings(cmd.Flags(), a.flags, a.getenv, profile)
	if err != nil {
		return err
	}
	a.settings = s

	level, err := internallog.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}

	out := a.stderr
	if s.LogFile != "" {
		rf, err := internallog.OpenFile(s.LogFile)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rf)
		out = rf
	}
	a.logger = internallog.New(out, level, internallog.Format(s.LogFormat))

	if s.AuditLog != "" {
		rf, err := internallog.OpenFile(s.AuditLog)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rf)
		a.audit = internallog.New(rf, slog.LevelInfo, internallog.FormatJSON)
	}

	if profilePath != "" {
		a.logger.Debug("loaded profile", "path", profilePath)
	}
	return nil
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// newClient builds a client from the resolved settings, prompting for the
// password when none was configured.
func (a *app) newClient() (*client.Client, error) {
	s := a.settings
	if s.Username == "" {
		return nil, errors.New("username is required (use --username, ATTACKMATE_USERNAME or the profile)")
	}

	password := s.Password
	if password == "" {
		password = a.promptPassword()
	}
	if password == "" {
		return nil, errors.New("password is required (use --password, ATTACKMATE_PASSWORD, the profile or stdin)")
	}

	cfg := client.DefaultConfig()
	cfg.Username = s.Username
	cfg.Password = password
	cfg.CACert = s.CACert
	cfg.Timeout = s.Timeout
	cfg.Proxy = s.Proxy
	cfg.Cache = a.cache
	cfg.Logger = a.logger
	cfg.AuditLogger = a.audit

	return client.New(s.ServerURL, cfg)
}

// promptPassword reads a password from stdin, without echo on a terminal.
func (a *app) promptPassword() string {
	fmt.Fprint(a.stderr, "Password: ")

	if f, ok := a.stdin.(*os.File); ok {
		if pw, isTerm, err := readTerminalPassword(f); isTerm {
			fmt.Fprintln(a.stderr)
			if err != nil {
				return ""
			}
			return pw
		}
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return trimNewline(line)
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "attackmate-client %s\n", version)
		},
	}
}
