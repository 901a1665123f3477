package events

import (
	"time"

	"github.com/spec-kit/attendance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAttendanceRegistered EventType = "attendance_registered"
	EventAttendanceSignedOut  EventType = "attendance_signed_out"
)

// Actor identifies the authenticated caller that caused an event, if known.
type Actor struct {
	Subject string `json:"subject,omitempty"`
}

// Event represents a domain event emitted by services after a successful write.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AttendancePayload carries the employee and the committed record.
type AttendancePayload struct {
	Employee domain.Employee         `json:"employee"`
	Record   domain.AttendanceRecord `json:"record"`
}
