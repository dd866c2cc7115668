package command

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCommand is returned when a command is missing required fields.
var ErrInvalidCommand = errors.New("command: invalid command")

// Command is a single schema-checked action that can be sent to the server.
type Command interface {
	// Type returns the AttackMate command type, e.g. "shell".
	Type() string

	// Serialize returns the JSON-ready representation including "type".
	Serialize() (map[string]any, error)
}

// Base holds the options shared by every AttackMate command.
type Base struct {
	// OnlyIf is a condition that must hold for the command to run.
	OnlyIf string `json:"only_if,omitempty"`

	// Save writes the command output to this file on the server.
	Save string `json:"save,omitempty"`

	// ExitOnError aborts the playbook when the command fails.
	ExitOnError *bool `json:"exit_on_error,omitempty"`

	// Background runs the command without waiting for it.
	Background bool `json:"background,omitempty"`

	// Metadata is free-form data attached to the command.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Shell runs a shell command on the server.
type Shell struct {
	Base

	Cmd            string `json:"cmd"`
	Interactive    bool   `json:"interactive,omitempty"`
	CommandTimeout int    `json:"command_timeout,omitempty"`
	Bin            string `json:"bin,omitempty"`
}

// Type implements Command.
func (*Shell) Type() string { return "shell" }

// Validate checks required fields.
func (s *Shell) Validate() error {
	if s.Cmd == "" {
		return fmt.Errorf("%w: shell: cmd is required", ErrInvalidCommand)
	}
	return nil
}

// Serialize implements Command.
func (s *Shell) Serialize() (map[string]any, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return serialize(s.Type(), s)
}

// Sleep pauses playbook execution.
type Sleep struct {
	Base

	Seconds int  `json:"seconds,omitempty"`
	MinSec  int  `json:"min_sec,omitempty"`
	Random  bool `json:"random,omitempty"`
}

// Type implements Command.
func (*Sleep) Type() string { return "sleep" }

// Validate checks field consistency.
func (s *Sleep) Validate() error {
	if s.Seconds < 0 || s.MinSec < 0 {
		return fmt.Errorf("%w: sleep: durations must not be negative", ErrInvalidCommand)
	}
	if s.Random && s.MinSec > s.Seconds {
		return fmt.Errorf("%w: sleep: min_sec exceeds seconds", ErrInvalidCommand)
	}
	return nil
}

// Serialize implements Command.
func (s *Sleep) Serialize() (map[string]any, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return serialize(s.Type(), s)
}

// Debug prints a message or the variable store on the server.
type Debug struct {
	Base

	Message    string `json:"cmd,omitempty"`
	Varstore   bool   `json:"varstore,omitempty"`
	Exit       bool   `json:"exit,omitempty"`
	WaitForKey bool   `json:"wait_for_key,omitempty"`
}

// Type implements Command.
func (*Debug) Type() string { return "debug" }

// Serialize implements Command.
func (d *Debug) Serialize() (map[string]any, error) {
	return serialize(d.Type(), d)
}

// SetVar assigns a playbook variable.
type SetVar struct {
	Base

	Variable string `json:"variable"`
	Value    string `json:"cmd"`
	Encoder  string `json:"encoder,omitempty"`
}

// Type implements Command.
func (*SetVar) Type() string { return "setvar" }

// Validate checks required fields.
func (s *SetVar) Validate() error {
	if s.Variable == "" {
		return fmt.Errorf("%w: setvar: variable is required", ErrInvalidCommand)
	}
	return nil
}

// Serialize implements Command.
func (s *SetVar) Serialize() (map[string]any, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return serialize(s.Type(), s)
}

// Raw is a command already validated by an external schema validator.
// It must contain a non-empty string "type" key.
type Raw map[string]any

// Type implements Command.
func (r Raw) Type() string {
	t, _ := r["type"].(string)
	return t
}

// Serialize implements Command. Nil values are dropped.
func (r Raw) Serialize() (map[string]any, error) {
	if r.Type() == "" {
		return nil, fmt.Errorf("%w: raw command has no type", ErrInvalidCommand)
	}
	out := make(map[string]any, len(r))
	for k, v := range r {
		if v != nil {
			out[k] = v
		}
	}
	return out, nil
}

// serialize round-trips v through JSON so that omitempty tags decide which
// fields are sent, then stamps the command type.
func serialize(typ string, v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("command: encode %s: %w", typ, err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("command: decode %s: %w", typ, err)
	}
	out["type"] = typ
	return out, nil
}
