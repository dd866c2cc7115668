package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

const envPrefix = "ATTACKMATE_"

// settings are the effective values after merging flags, environment and
// profile.
type settings struct {
	ServerURL string
	Username  string
	Password  string
	CACert    string
	Timeout   time.Duration
	Proxy     string
	LogLevel  string
	LogFile   string
	LogFormat string
	AuditLog  string
}

// resolveSettings applies flag > environment > profile > flag default.
func resolveSettings(fs *pflag.FlagSet, f globalFlags, getenv func(string) string, p *Profile) (settings, error) {
	if p == nil {
		p = &Profile{}
	}

	pick := func(flag, flagVal, env, profileVal string) string {
		if fs.Changed(flag) {
			return flagVal
		}
		if v := getenv(envPrefix + env); v != "" {
			return v
		}
		if profileVal != "" {
			return profileVal
		}
		return flagVal
	}

	s := settings{
		ServerURL: pick("server-url", f.serverURL, "SERVER_URL", p.ServerURL),
		Username:  pick("username", f.username, "USERNAME", p.Username),
		Password:  pick("password", f.password, "PASSWORD", p.Password),
		CACert:    pick("cacert", f.cacert, "CACERT", p.CACert),
		Proxy:     pick("proxy", f.proxy, "PROXY", p.Proxy),
		LogLevel:  pick("log-level", f.logLevel, "LOG_LEVEL", p.Log.Level),
		LogFile:   pick("log-file", f.logFile, "LOG_FILE", p.Log.File),
		LogFormat: pick("log-format", f.logFormat, "LOG_FORMAT", p.Log.Format),
		AuditLog:  pick("audit-log", f.auditLog, "AUDIT_LOG", p.Log.Audit),
		Timeout:   f.timeout,
	}

	if !fs.Changed("timeout") {
		if v := getenv(envPrefix + "TIMEOUT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return settings{}, fmt.Errorf("invalid %sTIMEOUT %q: %w", envPrefix, v, err)
			}
			s.Timeout = d
		} else if p.Timeout.Duration > 0 {
			s.Timeout = p.Timeout.Duration
		}
	}
	if s.Timeout <= 0 {
		return settings{}, fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}

	switch s.LogFormat {
	case "text", "json":
	default:
		return settings{}, fmt.Errorf("unknown log format %q", s.LogFormat)
	}
	return s, nil
}
