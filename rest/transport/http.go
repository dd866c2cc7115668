package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"
)

var (
	// ErrUnauthorized is matched by a *StatusError carrying HTTP 401.
	// Use errors.Is(err, ErrUnauthorized) to check for rejected credentials.
	ErrUnauthorized = errors.New("transport: authentication failed (401 Unauthorized)")

	// ErrTimeout wraps requests aborted by the client timeout or a context deadline.
	ErrTimeout = errors.New("transport: request timed out")

	// ErrConnection wraps DNS, dial, TLS handshake and other network failures.
	ErrConnection = errors.New("transport: connection failed")
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultConnectTimeout bounds TCP connection establishment.
	DefaultConnectTimeout = 5 * time.Second

	// defaultBufferSize is the initial size for pooled buffers.
	defaultBufferSize = 16 * 1024

	// maxErrorPreview caps the response text kept on a StatusError.
	maxErrorPreview = 3000
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
	},
}

// readAllPooled reads from r using a pooled buffer and returns a copy of the data.
func readAllPooled(r io.Reader) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the (possibly truncated) response body.
	Body []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: HTTP %d: %s", e.StatusCode, e.Body)
}

// Is reports a 401 StatusError as ErrUnauthorized.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Request describes a single outgoing API call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully-read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HTTPTransport handles HTTP/HTTPS communication with the API server.
type HTTPTransport struct {
	client *http.Client
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// NewHTTPTransport creates a new HTTP transport with the given options.
func NewHTTPTransport(opts ...HTTPTransportOption) *HTTPTransport {
	dialer := &net.Dialer{Timeout: DefaultConnectTimeout}
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy:       http.ProxyFromEnvironment,
				DialContext: dialer.DialContext,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTimeout sets the HTTP client timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.client.Timeout = d
		}
	}
}

// WithRootCAs verifies the server certificate against pool instead of the
// system trust store. A nil pool keeps the system trust store.
func WithRootCAs(pool *x509.CertPool) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if pool == nil {
			return
		}
		transport := t.ensureHTTPTransport()
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		transport.TLSClientConfig.RootCAs = pool
	}
}

// WithTLSConfig sets a custom TLS configuration.
// MinVersion is raised to TLS 1.2 and certificate verification is always on.
func WithTLSConfig(cfg *tls.Config) HTTPTransportOption {
	return func(t *HTTPTransport) {
		transport := t.ensureHTTPTransport()
		if cfg.MinVersion < tls.VersionTLS12 {
			cfg.MinVersion = tls.VersionTLS12
		}
		cfg.InsecureSkipVerify = false
		transport.TLSClientConfig = cfg
	}
}

// ParseProxy validates a proxy setting. "" and "direct" return nil; any
// other value must be an http, https or socks5 URL with a host.
func ParseProxy(proxyURL string) (*url.URL, error) {
	if proxyURL == "" || proxyURL == "direct" {
		return nil, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid proxy URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("transport: invalid proxy URL %q: unsupported scheme %q", proxyURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("transport: invalid proxy URL %q: missing host", proxyURL)
	}
	return u, nil
}

// WithProxy configures the proxy. An empty string keeps the environment
// proxy settings, "direct" disables proxying, anything else is a proxy URL.
// A value rejected by ParseProxy leaves the environment settings in place;
// callers validate with ParseProxy first.
func WithProxy(proxyURL string) HTTPTransportOption {
	return func(t *HTTPTransport) {
		transport := t.ensureHTTPTransport()
		switch proxyURL {
		case "":
			transport.Proxy = http.ProxyFromEnvironment
		case "direct":
			transport.Proxy = nil
		default:
			u, err := ParseProxy(proxyURL)
			if err != nil {
				transport.Proxy = http.ProxyFromEnvironment
				return
			}
			transport.Proxy = http.ProxyURL(u)
		}
	}
}

// LoadCACertPool reads PEM certificates from path into a new pool.
func LoadCACertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to read CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("transport: no certificates found in %s", path)
	}
	return pool, nil
}

// ensureHTTPTransport ensures the client has an *http.Transport.
func (t *HTTPTransport) ensureHTTPTransport() *http.Transport {
	transport, ok := t.client.Transport.(*http.Transport)
	if !ok {
		transport = &http.Transport{}
		t.client.Transport = transport
	}
	return transport
}

// Do sends req and returns the response if the server answered 2xx.
// Non-2xx answers are returned as *StatusError. The response body is
// always closed before Do returns.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	respBody, err := readAllPooled(resp.Body)
	if err != nil {
		return nil, classify(fmt.Errorf("transport: failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		preview := respBody
		if len(preview) > maxErrorPreview {
			preview = append(preview[:maxErrorPreview:maxErrorPreview], "..."...)
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: preview}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// classify wraps err with ErrTimeout or ErrConnection.
func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

// Client returns the underlying HTTP client for advanced configuration.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

// CloseIdleConnections closes any idle connections in the transport.
func (t *HTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}
