// Package audit captures key session-manager actions for security review.
// Events stay transport-agnostic so stores and sinks can fan out.
package audit

import "time"

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring and
	// forensics: failed callbacks, state mismatches, native injections.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the session manager to record one action.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Subject is the authenticated user's identifier when known.
	Subject string
	// Provenance distinguishes PKCE-obtained tokens from native-injected
	// ones; injected tokens never went through state/verifier checks.
	Provenance string
	Reason     string
	RequestID  string
	// UserAgent is the callback request's user agent, for device-level
	// forensics on suspicious callbacks.
	UserAgent string
}

type AuditEvent string

const (
	EventLoginInitiated   AuditEvent = "login_initiated"
	EventTokenExchanged   AuditEvent = "token_exchanged"
	EventTokenInjected    AuditEvent = "token_injected"
	EventAuthFailed       AuditEvent = "auth_failed"
	EventUserInfoAccessed AuditEvent = "userinfo_accessed"
	EventLoggedOut        AuditEvent = "logged_out"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventLoginInitiated:   CategoryOperations,
	EventTokenExchanged:   CategoryOperations,
	EventUserInfoAccessed: CategoryOperations,
	EventLoggedOut:        CategoryOperations,

	EventAuthFailed:    CategorySecurity,
	EventTokenInjected: CategorySecurity,
}

// Category returns the category for this event, defaulting to operations
// for unknown actions.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}
