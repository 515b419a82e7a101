package service

// EventPublisher receives entity-change notifications from services.
// The websocket hub satisfies it; tests run with a nil publisher.
type EventPublisher interface {
	Publish(event string, data interface{})
}

// Entity-change event names pushed to websocket clients.
const (
	EventPersonnelChanged = "personnel_changed"
	EventSectionChanged   = "section_changed"
	EventUserChanged      = "user_changed"
)
