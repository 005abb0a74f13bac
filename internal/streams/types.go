package streams

import "time"

// Stream name constants
const (
	StreamEvents = "bookline:events"
)

// Consumer group constants
const (
	GroupWorkers = "bookline-workers"
)

// Schema version constant
const (
	SchemaVersionV1 = "v1"
)

// Event kinds carried on the events stream
const (
	KindBookingCreated      = "booking.created"
	KindBookingCancelled    = "booking.cancelled"
	KindNotificationCreated = "notification.created"
)

// Event is the envelope for every message published to the events stream.
// Only the fields relevant to the kind are set.
type Event struct {
	Kind string `json:"kind"`

	AppointmentID  uint `json:"appointment_id,omitempty"`
	NotificationID uint `json:"notification_id,omitempty"`
	UserID         uint `json:"user_id,omitempty"`
	ProfessionalID uint `json:"professional_id,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCreated builds a booking.created event.
func BookingCreated(appointmentID, userID, professionalID uint) Event {
	return Event{
		Kind:           KindBookingCreated,
		AppointmentID:  appointmentID,
		UserID:         userID,
		ProfessionalID: professionalID,
		OccurredAt:     time.Now(),
	}
}

// BookingCancelled builds a booking.cancelled event.
func BookingCancelled(appointmentID, userID, professionalID uint) Event {
	return Event{
		Kind:           KindBookingCancelled,
		AppointmentID:  appointmentID,
		UserID:         userID,
		ProfessionalID: professionalID,
		OccurredAt:     time.Now(),
	}
}

// NotificationCreated builds a notification.created event.
func NotificationCreated(notificationID, userID uint) Event {
	return Event{
		Kind:           KindNotificationCreated,
		NotificationID: notificationID,
		UserID:         userID,
		OccurredAt:     time.Now(),
	}
}
