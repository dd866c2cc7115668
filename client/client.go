package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/smnsjas/go-attackmate/command"
	"github.com/smnsjas/go-attackmate/rest"
	"github.com/smnsjas/go-attackmate/rest/auth"
	"github.com/smnsjas/go-attackmate/rest/transport"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 60 * time.Second

// Config holds configuration for a remote AttackMate client.
type Config struct {
	// CACert is the path to a PEM CA certificate used to verify the server.
	// Empty means the system trust store. A path that does not exist is
	// logged and the system trust store is used instead.
	CACert string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// Timeout bounds each HTTP request (default: 60s).
	Timeout time.Duration

	// Proxy is passed to transport.WithProxy ("" = environment, "direct" = none).
	Proxy string

	// Cache stores tokens by server identity. Nil means auth.DefaultTokenCache().
	Cache *auth.TokenCache

	// Logger receives operational logs. Nil means slog.Default().
	Logger *slog.Logger

	// AuditLogger receives SecurityEvents. Nil disables auditing.
	AuditLogger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: DefaultTimeout,
	}
}

// Validate checks that the configuration is valid.
// Credentials are optional: a client may run on a token another client cached.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Password != "" && c.Username == "" {
		return errors.New("password given without username")
	}
	if _, err := transport.ParseProxy(c.Proxy); err != nil {
		return err
	}
	return nil
}

// LogValue implements slog.LogValuer so the password is never logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("cacert", c.CACert),
		slog.Any("credentials", auth.Credentials{Username: c.Username, Password: c.Password}),
		slog.Duration("timeout", c.Timeout),
	)
}

// Client runs playbooks and commands on a remote AttackMate server.
//
// All fields are fixed at construction. The token lives in the shared
// TokenCache, not in the Client. A Client is not safe for concurrent use
// when its cache is shared; see the package documentation.
type Client struct {
	serverURL string
	identity  auth.Identity
	creds     auth.Credentials
	caCert    string
	timeout   time.Duration

	cache     *auth.TokenCache
	transport *transport.HTTPTransport
	api       *rest.Client

	logger   *slog.Logger
	security *SecurityLogger
}

// New creates a new client for serverURL.
//
// New fails only for an unusable URL or a CA file that exists but holds
// no certificates. It performs no network I/O.
func New(serverURL string, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: want http(s)://host[:port]", serverURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("server", serverURL)

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	opts := []transport.HTTPTransportOption{
		transport.WithTimeout(timeout),
		transport.WithProxy(cfg.Proxy),
	}

	caCert := ""
	if cfg.CACert != "" {
		if _, statErr := os.Stat(cfg.CACert); statErr != nil {
			logger.Error("CA certificate file not found, falling back to default verification",
				"cacert", cfg.CACert, "error", statErr)
		} else {
			pool, err := transport.LoadCACertPool(cfg.CACert)
			if err != nil {
				return nil, err
			}
			opts = append(opts, transport.WithRootCAs(pool))
			caCert = cfg.CACert
			logger.Info("verifying server certificate with CA", "cacert", caCert)
		}
	}

	if u.Scheme != "https" && cfg.Password != "" {
		logger.Warn("credentials will be sent over a non-HTTPS connection")
	}

	cache := cfg.Cache
	if cache == nil {
		cache = auth.DefaultTokenCache()
	}

	tr := transport.NewHTTPTransport(opts...)

	c := &Client{
		serverURL: serverURL,
		identity:  auth.NewIdentity(serverURL, cfg.Username),
		creds:     auth.Credentials{Username: cfg.Username, Password: cfg.Password},
		caCert:    caCert,
		timeout:   timeout,
		cache:     cache,
		transport: tr,
		api:       rest.NewClient(serverURL, tr),
		logger:    logger,
		security:  NewSecurityLogger(cfg.AuditLogger, cfg.Username, serverURL),
	}

	logger.Debug("remote client initialized", "config", cfg)
	return c, nil
}

// ServerURL returns the normalized server base URL.
func (c *Client) ServerURL() string {
	return c.serverURL
}

// Identity returns the token cache key for this client.
func (c *Client) Identity() auth.Identity {
	return c.identity
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// CACert returns the CA file in use, or "" for the system trust store.
func (c *Client) CACert() string {
	return c.caCert
}

// Security returns the client's audit logger.
func (c *Client) Security() *SecurityLogger {
	return c.security
}

// ExecutePlaybookYAML runs a playbook given as YAML text (not a file path).
// It returns nil on any failure; the cause is logged.
func (c *Client) ExecutePlaybookYAML(playbook string, debug bool) *Result {
	result, _ := c.ExecutePlaybookYAMLContext(context.Background(), playbook, debug)
	return result
}

// ExecutePlaybookYAMLContext is like ExecutePlaybookYAML but returns the
// failure as an error from the client's error taxonomy.
func (c *Client) ExecutePlaybookYAMLContext(ctx context.Context, playbook string, debug bool) (*Result, error) {
	c.logger.Debug("executing playbook",
		"debug", debug,
		"bytes", len(playbook),
		"preview", sanitizePlaybookForLogging(playbook))

	return c.execute(ctx, "POST "+rest.PathExecuteYAML, func(ctx context.Context, token string) (*rest.ExecutionResponse, error) {
		return c.api.ExecutePlaybookYAML(ctx, token, playbook, debug)
	})
}

// ExecuteCommand runs a single structured command.
// It returns nil on any failure; the cause is logged.
func (c *Client) ExecuteCommand(cmd command.Command, debug bool) *Result {
	result, _ := c.ExecuteCommandContext(context.Background(), cmd, debug)
	return result
}

// ExecuteCommandContext is like ExecuteCommand but returns the failure as an
// error from the client's error taxonomy. An invalid command fails before
// any request is sent.
func (c *Client) ExecuteCommandContext(ctx context.Context, cmd command.Command, debug bool) (*Result, error) {
	if cmd == nil {
		err := fmt.Errorf("%w: nil command", ErrInvalidCommand)
		c.logger.Error("cannot execute command", "error", err)
		return nil, err
	}

	body, err := cmd.Serialize()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		c.logger.Error("cannot execute command", "type", cmd.Type(), "error", err)
		return nil, err
	}

	c.logger.Debug("executing command", "type", cmd.Type(), "debug", debug)

	return c.execute(ctx, "POST "+rest.PathExecuteCommand, func(ctx context.Context, token string) (*rest.ExecutionResponse, error) {
		return c.api.ExecuteCommand(ctx, token, body, debug)
	})
}

// execute runs one authenticated action: obtain a token, send the request,
// evict the token on 401, capture a renewed token on success.
func (c *Client) execute(
	ctx context.Context,
	action string,
	send func(ctx context.Context, token string) (*rest.ExecutionResponse, error),
) (*Result, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		c.logger.Error("authentication failed or credentials not provided", "action", action, "error", err)
		return nil, err
	}

	c.security.LogExecution(SubtypeExecute, OutcomeAttempt, SeverityInfo, map[string]any{"action": action})

	resp, err := send(ctx, token)
	if err != nil {
		err = classifyError(err, false)
		c.logRequestFailure(action, err)

		if errors.Is(err, ErrTokenExpired) {
			c.logger.Warn("token expired or invalid, clearing session cache", "user", c.identity.Username)
			c.cache.Invalidate(c.identity)
			c.security.LogToken(SubtypeTokenInvalidate, OutcomeDenied, SeverityWarning, nil)
		}

		c.security.LogExecution(SubtypeExecFailed, OutcomeFailure, SeverityError,
			map[string]any{"action": action, "error": err.Error()})
		return nil, err
	}

	if resp.CurrentToken != "" && resp.CurrentToken != token {
		c.logger.Info("server returned a renewed token, updating cache")
		c.cache.Put(c.identity, resp.CurrentToken)
		c.security.LogToken(SubtypeTokenRenewed, OutcomeSuccess, SeverityInfo, nil)
	}

	c.security.LogExecution(SubtypeExecComplete, OutcomeSuccess, SeverityInfo,
		map[string]any{"action": action, "playbook_success": resp.Success})

	return newResult(resp), nil
}

// ensureToken returns the cached token for this identity or logs in.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if token, ok := c.cache.Get(c.identity); ok {
		c.logger.Debug("using cached token", "user", c.identity.Username)
		c.security.LogToken(SubtypeTokenReused, OutcomeSuccess, SeverityInfo, nil)
		return token, nil
	}

	if err := c.creds.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoCredentials, err)
	}

	c.logger.Info("attempting login", "url", c.serverURL+rest.PathLogin, "user", c.creds.Username)
	c.security.LogAuthentication(SubtypeAuthAttempt, OutcomeAttempt, SeverityInfo, nil)

	token, err := c.api.Login(ctx, c.creds)
	if err != nil {
		err = classifyError(err, true)
		c.logRequestFailure("POST "+rest.PathLogin, err)
		c.security.LogAuthentication(SubtypeAuthFailure, OutcomeFailure, SeverityError,
			map[string]any{"error": err.Error()})
		return "", err
	}

	c.cache.Put(c.identity, token)
	c.logger.Info("login successful, token stored", "user", c.creds.Username)
	c.security.LogAuthentication(SubtypeAuthSuccess, OutcomeSuccess, SeverityInfo, nil)
	return token, nil
}

// logRequestFailure logs a classified error with status and detail when the
// server answered.
func (c *Client) logRequestFailure(action string, err error) {
	var apiErr *rest.APIError
	if errors.As(err, &apiErr) {
		c.logger.Error("API error",
			"action", action,
			"status", apiErr.StatusCode,
			"detail", apiErr.Detail)
		return
	}
	if errors.Is(err, ErrMalformedResponse) {
		c.logger.Error("decode error, invalid response received", "action", action, "error", err)
		return
	}
	c.logger.Error("request error", "action", action, "error", err)
}
