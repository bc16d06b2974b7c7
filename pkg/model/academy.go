package model

import "time"

// PriceTier is the unit price for the one-hour block beginning at Time
// ("HH:MM"). A court's table holds at most one tier per hour mark; hours
// without a tier are free by design.
type PriceTier struct {
	Time  string  `json:"time" bson:"time" validate:"required,clock"`
	Price float64 `json:"price" bson:"price" validate:"min=0"`
}

type CourtPricing struct {
	CourtNumber int         `json:"court_number" bson:"court_number" validate:"required,min=1"`
	Prices      []PriceTier `json:"prices" bson:"prices" validate:"omitempty,dive"`
}

// Sport configures every court of one sport at an academy: the shared
// operating window, the court count, and per-court price tables.
type Sport struct {
	SportName      string         `json:"sport_name" bson:"sport_name" validate:"required,min=2,max=50"`
	NumberOfCourts int            `json:"number_of_courts" bson:"number_of_courts" validate:"required,min=1,max=100"`
	StartTime      string         `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime        string         `json:"end_time" bson:"end_time" validate:"required,clock"`
	Pricing        []CourtPricing `json:"pricing" bson:"pricing" validate:"omitempty,dive"`
}

type Academy struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Phone     string    `json:"phone" bson:"phone" validate:"omitempty,e164"`
	Address   string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	City      string    `json:"city" bson:"city" validate:"required,min=2,max=50"`
	Sports    []Sport   `json:"sports,omitempty" bson:"sports" validate:"omitempty,dive"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// SportByName returns the sport configuration, or nil if the academy does
// not offer it.
func (a *Academy) SportByName(name string) *Sport {
	for i := range a.Sports {
		if a.Sports[i].SportName == name {
			return &a.Sports[i]
		}
	}
	return nil
}

// CourtTable returns the price table for one court, or nil if the court has
// no pricing configured.
func (s *Sport) CourtTable(courtNumber int) *CourtPricing {
	for i := range s.Pricing {
		if s.Pricing[i].CourtNumber == courtNumber {
			return &s.Pricing[i]
		}
	}
	return nil
}
