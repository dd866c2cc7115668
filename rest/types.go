package rest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LoginResponse is the body returned by the login endpoint.
type LoginResponse struct {
	AccessToken string `json:"access_token"`

	// Token is accepted as an alias for servers that use the shorter name.
	Token string `json:"token"`

	TokenType string `json:"token_type,omitempty"`
}

// BearerToken returns the issued token, preferring access_token.
func (r *LoginResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// ExecutionResponse is the body returned by both execute endpoints.
//
// Any JSON object decodes. Missing or mistyped fields fall back instead of
// failing: success is true only for true, a non-zero number or a string
// strconv.ParseBool accepts as true; a non-string message is rendered with
// fmt; a final_state that is not an object is nil; a non-string
// current_token is ignored.
type ExecutionResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	FinalState   *FinalState `json:"final_state,omitempty"`
	CurrentToken string      `json:"current_token,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ExecutionResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = ExecutionResponse{Success: truthy(raw["success"])}

	switch msg := raw["message"].(type) {
	case nil:
	case string:
		r.Message = msg
	default:
		r.Message = fmt.Sprint(msg)
	}

	if state, ok := raw["final_state"].(map[string]any); ok {
		r.FinalState = newFinalState(state)
	}

	if token, ok := raw["current_token"].(string); ok {
		r.CurrentToken = token
	}
	return nil
}

func truthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// FinalState is the server's post-execution snapshot. Only the variable
// store is interpreted; the full object is kept in Raw.
type FinalState struct {
	Variables map[string]any
	Raw       map[string]any
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FinalState) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = *newFinalState(raw)
	return nil
}

func newFinalState(raw map[string]any) *FinalState {
	f := &FinalState{Raw: raw}
	if vars, ok := raw["variables"].(map[string]any); ok {
		f.Variables = vars
	}
	return f
}

// MarshalJSON implements json.Marshaler.
func (f FinalState) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Raw)+1)
	for k, v := range f.Raw {
		out[k] = v
	}
	if f.Variables != nil {
		out["variables"] = f.Variables
	}
	return json.Marshal(out)
}
