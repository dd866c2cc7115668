package client

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/smnsjas/go-attackmate/rest/auth"
)

// TestConfig_LogRedaction verifies that sensitive fields in Config are redacted
// when logged using slog.
func TestConfig_LogRedaction(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	logger := slog.New(handler)

	secretPass := "SecretPassword123!"
	cfg := Config{
		Username: "testuser",
		Password: secretPass,
		CACert:   "/etc/attackmate/ca.pem",
	}

	logger.Info("config loaded", "config", cfg)
	logOutput := buf.String()

	if !strings.Contains(logOutput, "testuser") {
		t.Errorf("Log output should contain non-sensitive field 'testuser', got: %s", logOutput)
	}
	if strings.Contains(logOutput, secretPass) {
		t.Errorf("SECURITY FAIL: Log output contains plaintext password! Got: %s", logOutput)
	}
	if !strings.Contains(logOutput, "REDACTED") {
		t.Errorf("Log output should contain redaction marker, got: %s", logOutput)
	}
}

// TestClient_DoesNotLogSecrets runs a full exchange and checks the debug log.
func TestClient_DoesNotLogSecrets(t *testing.T) {
	fs := newFakeServer(t)
	logger, buf := newTestLogger()

	c, err := New(fs.URL, Config{Username: testUser, Password: testPassword, Logger: logger, Cache: auth.NewTokenCache()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if c.ExecutePlaybookYAML("vars:\n  password: hunter2\n", false) == nil {
		t.Fatal("expected a result")
	}

	out := buf.String()
	for _, secret := range []string{testPassword, "hunter2", "testuser-token-1"} {
		if strings.Contains(out, secret) {
			t.Errorf("log output leaks %q: %s", secret, out)
		}
	}
}
