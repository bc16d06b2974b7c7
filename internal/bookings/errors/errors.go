package errors

import "errors"

// Stable rejection reason codes, carried in the "reason" detail of error
// responses so clients can branch without parsing messages.
const (
	ReasonOutOfHours         = "OutOfHours"
	ReasonSlotTaken          = "SlotTaken"
	ReasonSportNotOffered    = "SportNotOffered"
	ReasonPricingMissing     = "PricingMissing"
	ReasonNotFoundOrNotOwner = "NotFoundOrNotOwner"
	ReasonAlreadyCancelled   = "AlreadyCancelled"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")
)
