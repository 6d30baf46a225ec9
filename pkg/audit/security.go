// Package audit provides security screening and audit logging for SIEM
// consumption. Events are logged in structured JSON so security tooling
// can filter on the dedicated logger namespace.
package audit

import (
	"encoding/json"
	"time"

	libinjection "github.com/corazawaf/libinjection-go"
	"go.uber.org/zap"
)

// SecurityEventType categorizes security-relevant events for filtering
// and alerting.
type SecurityEventType string

const (
	// EventInjectionAttempt is logged when libinjection flags a question.
	EventInjectionAttempt SecurityEventType = "question_injection_attempt"
	// EventBlockedQuery is logged when the validator rejects a candidate.
	EventBlockedQuery SecurityEventType = "blocked_query"
	// EventRateLimited is logged when admission control denies a request.
	EventRateLimited SecurityEventType = "rate_limit_exceeded"
)

// SecurityEvent is one auditable event with the context SIEM analysis
// needs.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// InjectionFinding describes what libinjection flagged in a question.
type InjectionFinding struct {
	Question    string `json:"question"`
	Fingerprint string `json:"fingerprint"`
}

// ScreenQuestion runs libinjection over the raw question text. Questions
// carrying SQL injection payloads are flagged; ordinary natural-language
// questions pass. Screening is advisory — the validator remains the hard
// gate — but a hit is worth an alert on its own.
func ScreenQuestion(question string) *InjectionFinding {
	isSQLi, fingerprint := libinjection.IsSQLi(question)
	if !isSQLi {
		return nil
	}
	return &InjectionFinding{Question: question, Fingerprint: string(fingerprint)}
}

// SecurityAuditor logs security events for SIEM consumption.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates an auditor with the "security_audit" logger
// namespace so SIEM systems can filter on it.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogInjectionAttempt records a flagged question at ERROR level with
// critical severity for immediate alerting.
func (a *SecurityAuditor) LogInjectionAttempt(userID, sessionID, clientIP string, finding InjectionFinding) {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventInjectionAttempt,
		UserID:    userID,
		SessionID: sessionID,
		ClientIP:  clientIP,
		Details:   finding,
		Severity:  "critical",
	}
	eventJSON, _ := json.Marshal(event)

	a.logger.Error("injection pattern detected in question",
		zap.String("event_json", string(eventJSON)),
		zap.String("user_id", userID),
		zap.String("fingerprint", finding.Fingerprint),
		zap.String("client_ip", clientIP),
		zap.String("severity", "critical"),
	)
}

// LogBlockedQuery records a validator rejection at WARN level.
func (a *SecurityAuditor) LogBlockedQuery(userID, sessionID, sql string, errors []string) {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventBlockedQuery,
		UserID:    userID,
		SessionID: sessionID,
		Details:   map[string]any{"sql": sql, "errors": errors},
		Severity:  "warning",
	}
	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("candidate query blocked by validator",
		zap.String("event_json", string(eventJSON)),
		zap.String("user_id", userID),
		zap.Strings("errors", errors),
	)
}

// LogRateLimited records an admission denial at WARN level.
func (a *SecurityAuditor) LogRateLimited(userID, clientIP string) {
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventRateLimited,
		UserID:    userID,
		ClientIP:  clientIP,
		Severity:  "warning",
	}
	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("request denied by rate limiter",
		zap.String("event_json", string(eventJSON)),
		zap.String("user_id", userID),
		zap.String("client_ip", clientIP),
	)
}
