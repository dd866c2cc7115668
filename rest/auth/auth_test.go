package auth

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestCredentials_Validate verifies required fields.
func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr string
	}{
		{"complete", Credentials{Username: "admin", Password: "secret"}, ""},
		{"missing username", Credentials{Password: "secret"}, "username is required"},
		{"missing password", Credentials{Username: "admin"}, "password is required"},
		{"empty", Credentials{}, "username is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

// TestCredentials_LogValue verifies the password is never logged.
func TestCredentials_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("login", "creds", Credentials{Username: "testuser", Password: "SuperSecret1"})

	out := buf.String()
	if !strings.Contains(out, "testuser") {
		t.Errorf("log output missing username: %s", out)
	}
	if strings.Contains(out, "SuperSecret1") {
		t.Errorf("log output contains plaintext password: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("log output missing redaction marker: %s", out)
	}
}
