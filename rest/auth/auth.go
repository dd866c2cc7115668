package auth

import (
	"errors"
	"log/slog"
)

// Credentials holds the username/password pair sent to the login endpoint.
type Credentials struct {
	// Username is the API user name.
	Username string

	// Password is the API password.
	Password string
}

// Validate checks that required credential fields are populated.
func (c *Credentials) Validate() error {
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// LogValue implements slog.LogValuer so the password never reaches a log sink.
func (c Credentials) LogValue() slog.Value {
	password := ""
	if c.Password != "" {
		password = "[REDACTED]"
	}
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("password", password),
	)
}
