package events

import "time"

const (
	TopicBookings    = "courtside.bookings"
	TopicBookingsDLQ = "courtside.bookings.dlq"

	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingModified  = "booking.modified"
)

// BookingEvent is the payload published on TopicBookings for every
// booking state change. The notifier consumes it to send confirmations.
type BookingEvent struct {
	BookingID   string    `json:"booking_id"`
	UserEmail   string    `json:"user_email"`
	AcademyID   string    `json:"academy_id"`
	AcademyName string    `json:"academy_name,omitempty"`
	Sport       string    `json:"sport"`
	CourtNumber int       `json:"court_number"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}
