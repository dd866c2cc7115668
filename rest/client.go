package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/smnsjas/go-attackmate/rest/auth"
	"github.com/smnsjas/go-attackmate/rest/transport"
)

// Client is a stateless AttackMate REST client. Each method issues exactly
// one HTTP request.
type Client struct {
	baseURL   string
	transport *transport.HTTPTransport
}

// NewClient creates a new REST client for baseURL.
func NewClient(baseURL string, tr *transport.HTTPTransport) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: tr,
	}
}

// BaseURL returns the normalized server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges creds for a bearer token.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (string, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	resp, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + PathLogin,
		Header: http.Header{
			"Content-Type": []string{ContentTypeForm},
			"Accept":       []string{ContentTypeJSON},
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		return "", fmt.Errorf("login: %w", toAPIError(err))
	}

	var lr LoginResponse
	if err := decodeObject(resp.Body, &lr); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	token := lr.BearerToken()
	if token == "" {
		return "", fmt.Errorf("login: %w", ErrMissingToken)
	}
	return token, nil
}

// ExecutePlaybookYAML sends playbook verbatim to the YAML execution endpoint.
func (c *Client) ExecutePlaybookYAML(ctx context.Context, token, playbook string, debug bool) (*ExecutionResponse, error) {
	resp, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.endpointURL(PathExecuteYAML, debug),
		Header: c.authHeader(token, ContentTypeYAML),
		Body:   []byte(playbook),
	})
	if err != nil {
		return nil, fmt.Errorf("execute playbook: %w", toAPIError(err))
	}
	return decodeExecution(resp.Body)
}

// ExecuteCommand sends a serialized command to the command execution endpoint.
func (c *Client) ExecuteCommand(ctx context.Context, token string, cmd map[string]any, debug bool) (*ExecutionResponse, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("execute command: encode body: %w", err)
	}

	resp, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.endpointURL(PathExecuteCommand, debug),
		Header: c.authHeader(token, ContentTypeJSON),
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("execute command: %w", toAPIError(err))
	}
	return decodeExecution(resp.Body)
}

// endpointURL joins path onto the base URL, adding debug=true when requested.
func (c *Client) endpointURL(path string, debug bool) string {
	u := c.baseURL + path
	if debug {
		q := url.Values{}
		q.Set(QueryDebug, "true")
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) authHeader(token, contentType string) http.Header {
	return http.Header{
		HeaderAuthToken: []string{token},
		"Content-Type":  []string{contentType},
		"Accept":        []string{ContentTypeJSON},
	}
}

func decodeExecution(body []byte) (*ExecutionResponse, error) {
	var er ExecutionResponse
	if err := decodeObject(body, &er); err != nil {
		return nil, fmt.Errorf("decode execution response: %w", err)
	}
	return &er, nil
}

// decodeObject decodes a JSON object into v. Empty bodies, null and
// non-object values are reported as ErrMalformedResponse.
func decodeObject(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: expected JSON object", ErrMalformedResponse)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
