package model

import "time"

const (
	BookingStatusConfirmed = "Confirmed"
	BookingStatusCancelled = "Cancelled"
)

// Booking is one ledger record. Cancelled bookings are never deleted; they
// stay in the collection for audit and are filtered by status at read time.
type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserEmail   string    `json:"user_email" bson:"user_email" validate:"required,email"`
	AcademyID   string    `json:"academy_id" bson:"academy_id" validate:"required,mongodb"`
	Sport       string    `json:"sport" bson:"sport" validate:"required,min=2,max=50"`
	CourtNumber int       `json:"court_number" bson:"court_number" validate:"required,min=1"`
	Date        string    `json:"date" bson:"date" validate:"required,bookdate"`
	StartTime   string    `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime     string    `json:"end_time" bson:"end_time" validate:"required,clock"`
	Price       float64   `json:"price" bson:"price" validate:"min=0"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=Confirmed Cancelled"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingRequest is the input to a commit attempt on one court.
type BookingRequest struct {
	UserEmail   string `json:"user_email" validate:"required,email"`
	AcademyID   string `json:"academy_id" validate:"required,mongodb"`
	Sport       string `json:"sport" validate:"required,min=2,max=50"`
	CourtNumber int    `json:"court_number" validate:"required,min=1"`
	Date        string `json:"date" validate:"required,bookdate"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	DurationMin int    `json:"duration_min" validate:"required,min=1,max=1440"`
}

// AvailabilityQuery asks for every court of a sport at once; the answer
// comes back in ascending court order.
type AvailabilityQuery struct {
	AcademyID   string `json:"academy_id" validate:"required,mongodb"`
	Sport       string `json:"sport" validate:"required,min=2,max=50"`
	Date        string `json:"date" validate:"required,bookdate"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	DurationMin int    `json:"duration_min" validate:"required,min=1,max=1440"`
}

// CourtAvailability is one row of a batch availability answer. An
// unavailable court carries a zero price.
type CourtAvailability struct {
	CourtNumber int     `json:"court_number"`
	Available   bool    `json:"available"`
	Price       float64 `json:"price"`
}

// BookingChange reschedules an existing booking in place. Unset fields keep
// the booking's current values.
type BookingChange struct {
	CourtNumber *int   `json:"court_number,omitempty" validate:"omitempty,min=1"`
	Date        string `json:"date,omitempty" validate:"omitempty,bookdate"`
	StartTime   string `json:"start_time,omitempty" validate:"omitempty,clock"`
	DurationMin *int   `json:"duration_min,omitempty" validate:"omitempty,min=1,max=1440"`
}
