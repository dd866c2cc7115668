package transport

import (
	"context"
	"crypto/tls"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeServerCA writes the test server's certificate as a PEM file.
func writeServerCA(t *testing.T, server *httptest.Server) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ca.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw})
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

// TestNewHTTPTransport verifies transport creation with default settings.
func TestNewHTTPTransport(t *testing.T) {
	tr := NewHTTPTransport()
	require.NotNil(t, tr)
	assert.Equal(t, DefaultTimeout, tr.client.Timeout)

	httpTransport, ok := tr.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, uint16(tls.VersionTLS12), httpTransport.TLSClientConfig.MinVersion)
	assert.False(t, httpTransport.TLSClientConfig.InsecureSkipVerify)
}

// TestHTTPTransport_WithTimeout verifies timeout configuration.
func TestHTTPTransport_WithTimeout(t *testing.T) {
	tr := NewHTTPTransport(WithTimeout(30 * time.Second))
	assert.Equal(t, 30*time.Second, tr.client.Timeout)

	tr = NewHTTPTransport(WithTimeout(0))
	assert.Equal(t, DefaultTimeout, tr.client.Timeout, "zero timeout keeps the default")
}

// TestHTTPTransport_WithTLSConfig verifies the config is applied and hardened.
func TestHTTPTransport_WithTLSConfig(t *testing.T) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS10, InsecureSkipVerify: true} // #nosec G402 -- asserting it gets overridden
	tr := NewHTTPTransport(WithTLSConfig(tlsCfg))

	httpTransport := tr.client.Transport.(*http.Transport)
	assert.Same(t, tlsCfg, httpTransport.TLSClientConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), tlsCfg.MinVersion)
	assert.False(t, tlsCfg.InsecureSkipVerify)
}

// TestHTTPTransport_WithProxy verifies proxy configuration.
func TestHTTPTransport_WithProxy(t *testing.T) {
	tests := []struct {
		name     string
		proxyURL string
		wantNil  bool
	}{
		{"empty uses environment", "", false},
		{"direct bypasses proxy", "direct", true},
		{"explicit proxy URL", "http://proxy.example.com:8080", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewHTTPTransport(WithProxy(tt.proxyURL))
			httpTransport := tr.client.Transport.(*http.Transport)
			if tt.wantNil {
				assert.Nil(t, httpTransport.Proxy)
			} else {
				assert.NotNil(t, httpTransport.Proxy)
			}
		})
	}
}

func TestParseProxy(t *testing.T) {
	tests := []struct {
		name    string
		proxy   string
		wantURL string
		wantErr bool
	}{
		{"empty", "", "", false},
		{"direct", "direct", "", false},
		{"http", "http://proxy.example.com:8080", "http://proxy.example.com:8080", false},
		{"socks5", "socks5://127.0.0.1:1080", "socks5://127.0.0.1:1080", false},
		{"missing scheme", "proxy.example.com:8080", "", true},
		{"unsupported scheme", "ftp://proxy.example.com", "", true},
		{"missing host", "http://", "", true},
		{"unparseable", "http://[::1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseProxy(tt.proxy)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantURL == "" {
				assert.Nil(t, u)
			} else {
				assert.Equal(t, tt.wantURL, u.String())
			}
		})
	}
}

// TestHTTPTransport_Do verifies basic request execution.
func TestHTTPTransport_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/yaml", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "commands: []", string(body))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Do(context.Background(), &Request{
		URL:    server.URL,
		Header: http.Header{"Content-Type": []string{"application/yaml"}},
		Body:   []byte("commands: []"),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(resp.Body))
}

// TestHTTPTransport_Do_StatusErrors verifies non-2xx classification.
func TestHTTPTransport_Do_StatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantUnauth bool
	}{
		{"unauthorized", http.StatusUnauthorized, true},
		{"forbidden", http.StatusForbidden, false},
		{"server error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer server.Close()

			_, err := NewHTTPTransport().Do(context.Background(), &Request{URL: server.URL})
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, "nope", string(statusErr.Body))
			assert.Equal(t, tt.wantUnauth, errors.Is(err, ErrUnauthorized))
		})
	}
}

// TestHTTPTransport_Do_TruncatesLargeErrorBody verifies the error preview cap.
func TestHTTPTransport_Do_TruncatesLargeErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer server.Close()

	_, err := NewHTTPTransport().Do(context.Background(), &Request{URL: server.URL})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Len(t, statusErr.Body, maxErrorPreview+3)
}

// TestHTTPTransport_Do_Timeout verifies timeouts are reported as ErrTimeout.
func TestHTTPTransport_Do_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewHTTPTransport(WithTimeout(20 * time.Millisecond))
	_, err := tr.Do(context.Background(), &Request{URL: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

// TestHTTPTransport_Do_ContextDeadline verifies context cancellation.
func TestHTTPTransport_Do_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewHTTPTransport().Do(ctx, &Request{URL: server.URL})
	assert.ErrorIs(t, err, ErrTimeout)
}

// TestHTTPTransport_Do_ConnectionRefused verifies dial failures.
func TestHTTPTransport_Do_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	_, err := NewHTTPTransport().Do(context.Background(), &Request{URL: addr})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
}

// TestHTTPTransport_TLS verifies CA-file based verification.
func TestHTTPTransport_TLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Run("unknown authority fails", func(t *testing.T) {
		_, err := NewHTTPTransport().Do(context.Background(), &Request{URL: server.URL})
		assert.ErrorIs(t, err, ErrConnection)
	})

	t.Run("explicit CA succeeds", func(t *testing.T) {
		pool, err := LoadCACertPool(writeServerCA(t, server))
		require.NoError(t, err)

		resp, err := NewHTTPTransport(WithRootCAs(pool)).Do(context.Background(), &Request{URL: server.URL})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

// TestLoadCACertPool_Errors verifies unreadable and non-PEM files.
func TestLoadCACertPool_Errors(t *testing.T) {
	_, err := LoadCACertPool(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a certificate"), 0600))
	_, err = LoadCACertPool(garbage)
	assert.ErrorContains(t, err, "no certificates found")
}
