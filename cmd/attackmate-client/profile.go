package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration read from a TOML string such as "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Profile is the optional TOML settings file.
//
//	server_url = "https://attackmate.lab:8445"
//	username   = "admin"
//	password   = "${ATTACKMATE_LAB_PASSWORD}"
//	cacert     = "~/.config/attackmate/ca.pem"
//	timeout    = "90s"
//
//	[log]
//	level = "debug"
//	file  = "/var/log/attackmate-client.log"
type Profile struct {
	ServerURL string     `toml:"server_url"`
	Username  string     `toml:"username"`
	Password  string     `toml:"password"`
	CACert    string     `toml:"cacert"`
	Timeout   Duration   `toml:"timeout"`
	Proxy     string     `toml:"proxy"`
	Log       LogProfile `toml:"log"`
}

// LogProfile holds the [log] table.
type LogProfile struct {
	Level  string `toml:"level"`
	File   string `toml:"file"`
	Format string `toml:"format"`
	Audit  string `toml:"audit"`
}

// LoadProfile reads a TOML profile. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func LoadProfile(path string) (*Profile, error) {
	path = expandPath(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var p Profile
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	p.expandEnvVars()
	return &p, nil
}

func (p *Profile) expandEnvVars() {
	p.Password = os.ExpandEnv(p.Password)
	p.CACert = expandPath(p.CACert)
	p.Log.File = expandPath(p.Log.File)
	p.Log.Audit = expandPath(p.Log.Audit)
}

// findProfile picks the profile path: the explicit flag, then
// ATTACKMATE_CONFIG, then fallback if that file exists. "" means none.
func findProfile(explicit string, getenv func(string) string, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if env := getenv(envPrefix + "CONFIG"); env != "" {
		return env
	}
	if fallback != "" {
		if _, err := os.Stat(fallback); err == nil {
			return fallback
		}
	}
	return ""
}

// expandPath expands environment variables and a leading "~/".
func expandPath(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return path
}
