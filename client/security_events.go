package client

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Audit event types
const (
	EventAuthentication = "authentication"
	EventToken          = "token"
	EventExecution      = "execution"
)

// Audit event subtypes
const (
	SubtypeAuthAttempt     = "attempt"
	SubtypeAuthSuccess     = "success"
	SubtypeAuthFailure     = "failure"
	SubtypeTokenReused     = "reused"
	SubtypeTokenRenewed    = "renewed"
	SubtypeTokenInvalidate = "invalidated"
	SubtypeExecute         = "execute"
	SubtypeExecComplete    = "complete"
	SubtypeExecFailed      = "failed"
)

// Audit event outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
	OutcomeAttempt = "attempt"
)

// Audit event severities
const (
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

// SecurityEvent is a structured audit record for authentication and
// execution activity against an AttackMate server.
type SecurityEvent struct {
	Timestamp string `json:"timestamp"` // ISO 8601 UTC
	EventType string `json:"event_type"`
	Subtype   string `json:"subtype"`
	Severity  string `json:"severity"`

	User          string `json:"user,omitempty"`
	Source        string `json:"source"`
	Target        string `json:"target"`
	CorrelationID string `json:"correlation_id"` // client-scoped UUID

	Action  string         `json:"action"`
	Outcome string         `json:"outcome"`
	Details map[string]any `json:"details,omitempty"`
}

// String returns the JSON representation of the event
func (e *SecurityEvent) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// SecurityLogger writes SecurityEvents for one client. A nil logger
// disables auditing.
type SecurityLogger struct {
	logger        *slog.Logger
	clock         Clock
	user          string
	target        string
	correlationID string
}

// NewSecurityLogger creates a new audit logger with a fresh correlation ID.
func NewSecurityLogger(logger *slog.Logger, user, target string) *SecurityLogger {
	return &SecurityLogger{
		logger:        logger,
		clock:         realClock{},
		user:          user,
		target:        target,
		correlationID: uuid.New().String(),
	}
}

// SetClock replaces the timestamp source. A nil clock restores the system clock.
func (l *SecurityLogger) SetClock(c Clock) {
	if c == nil {
		c = realClock{}
	}
	l.clock = c
}

// CorrelationID returns the UUID attached to every event from this logger.
func (l *SecurityLogger) CorrelationID() string {
	return l.correlationID
}

// LogEvent constructs and logs an audit event.
func (l *SecurityLogger) LogEvent(eventType, subtype, severity, outcome string, details map[string]any) {
	if l == nil || l.logger == nil {
		return
	}

	if details == nil {
		details = make(map[string]any)
	}

	event := &SecurityEvent{
		Timestamp:     l.clock.Now().UTC().Format(time.RFC3339),
		EventType:     eventType,
		Subtype:       subtype,
		Severity:      severity,
		User:          l.user,
		Source:        "go-attackmate",
		Target:        l.target,
		CorrelationID: l.correlationID,
		Action:        eventType + "." + subtype,
		Outcome:       outcome,
		Details:       details,
	}

	switch severity {
	case SeverityWarning:
		l.logger.Warn("SecurityEvent", "event", event)
	case SeverityError:
		l.logger.Error("SecurityEvent", "event", event)
	default:
		l.logger.Info("SecurityEvent", "event", event)
	}
}

// LogAuthentication logs login events.
func (l *SecurityLogger) LogAuthentication(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventAuthentication, subtype, severity, outcome, details)
}

// LogToken logs token cache lifecycle events.
func (l *SecurityLogger) LogToken(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventToken, subtype, severity, outcome, details)
}

// LogExecution logs playbook and command execution events.
func (l *SecurityLogger) LogExecution(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventExecution, subtype, severity, outcome, details)
}

// sensitivePatterns mark playbook text that must not be logged.
var sensitivePatterns = []string{
	"password",
	"passwd",
	"secret",
	"apikey",
	"api_key",
	"token",
	"credential",
	"private_key",
}

// sanitizePlaybookForLogging returns a loggable preview of playbook text.
func sanitizePlaybookForLogging(playbook string) string {
	lower := strings.ToLower(playbook)
	for _, p := range sensitivePatterns {
		if strings.Contains(lower, p) {
			return "[playbook contains sensitive data - not logged]"
		}
	}

	const maxLen = 100
	if len(playbook) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(playbook[cut]) {
			cut--
		}
		return playbook[:cut] + "... [truncated]"
	}
	return playbook
}
