package bus

import "time"

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds published by the core components. Subscribers filter by
// namespace prefix, e.g. "settings." or "chat.".
const (
	// KindSettingsChanged carries the new effective settings record so the
	// top-level holder can refresh in-memory state without a reload.
	KindSettingsChanged = "settings.changed"

	// KindSessionExpired signals that a restored session referenced an
	// account that no longer exists or is inactive.
	KindSessionExpired = "session.expired"

	// KindSessionDegraded signals that session validation could not reach
	// the backend and a stale record is being trusted.
	KindSessionDegraded = "session.degraded"

	// KindThreadsUpdated signals that the synchronizer rebuilt the per-user
	// thread snapshot and it differs from the previous one.
	KindThreadsUpdated = "chat.threads_updated"

	// KindMessageSent signals a newly persisted chat message.
	KindMessageSent = "chat.message_sent"

	// KindNotificationCreated signals a notification row created as a side
	// effect of publishing new content.
	KindNotificationCreated = "notification.created"
)
