package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	academyerrors "courtside/internal/academies/errors"
	bookingserrors "courtside/internal/bookings/errors"
	"courtside/internal/bookings/repository"
	"courtside/internal/bookings/validator"
	"courtside/internal/events"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/kafka"
	"courtside/pkg/model"
	"courtside/pkg/pricing"
	"courtside/pkg/sanitizer"
	"courtside/pkg/timeutil"
)

// AcademyReader is the slice of the academies repository the booking
// service needs: slot decisions read academy configuration, never write it.
type AcademyReader interface {
	FindByID(ctx context.Context, id string) (*model.Academy, error)
}

// EventPublisher pushes booking lifecycle events to the message bus.
// Publishing is best-effort; a broker outage never fails a booking.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msg kafka.Message) error
}

type BookingService interface {
	CheckAvailability(ctx context.Context, query *model.AvailabilityQuery) ([]model.CourtAvailability, error)
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	Cancel(ctx context.Context, id, userEmail string) error
	Modify(ctx context.Context, id, userEmail string, change *model.BookingChange) (*model.Booking, error)
	FindByUser(ctx context.Context, userEmail string, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	academies AcademyReader
	publisher EventPublisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	academies AcademyReader,
	publisher EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		academies: academies,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

// CheckAvailability answers for every court of the sport at once, in
// ascending court order. A slot outside operating hours is reported as
// unavailable rather than rejected, so the whole grid renders uniformly.
func (s *bookingService) CheckAvailability(ctx context.Context, query *model.AvailabilityQuery) ([]model.CourtAvailability, error) {
	query.Sport = sanitizer.SanitizeName(query.Sport)

	if err := s.validator.ValidateQuery(query); err != nil {
		s.cfg.Log.Warn("Availability query validation failed", "error", err)
		return nil, apperrors.Validation("Invalid availability query", map[string]any{"error": err.Error()})
	}
	if err := s.checkDuration(query.DurationMin); err != nil {
		return nil, err
	}

	academy, sport, err := s.loadSport(ctx, query.AcademyID, query.Sport)
	if err != nil {
		return nil, err
	}

	start, _ := timeutil.ParseClock(query.StartTime)
	end := start + query.DurationMin

	results := make([]model.CourtAvailability, 0, sport.NumberOfCourts)

	if !withinHours(sport, start, end) {
		for court := 1; court <= sport.NumberOfCourts; court++ {
			results = append(results, model.CourtAvailability{CourtNumber: court, Available: false, Price: 0})
		}
		return results, nil
	}

	booked, err := s.repo.FindConfirmedBySportDate(ctx, academy.ID, sport.SportName, query.Date)
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for availability", "academy_id", academy.ID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	byCourt := make(map[int][]*model.Booking, len(booked))
	for _, b := range booked {
		byCourt[b.CourtNumber] = append(byCourt[b.CourtNumber], b)
	}

	for court := 1; court <= sport.NumberOfCourts; court++ {
		if slotTaken(byCourt[court], start, end) {
			results = append(results, model.CourtAvailability{CourtNumber: court, Available: false, Price: 0})
			continue
		}

		price := s.quoteCourt(sport, court, start, query.DurationMin)
		results = append(results, model.CourtAvailability{CourtNumber: court, Available: true, Price: price})
	}

	return results, nil
}

// Create commits one slot. The advisory lock serializes concurrent commit
// attempts on the same slot; the transaction re-checks overlap before the
// insert so a stale availability answer can never double-book a court.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	req.UserEmail = sanitizer.SanitizeEmail(req.UserEmail)
	req.Sport = sanitizer.SanitizeName(req.Sport)

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}
	if err := s.checkDuration(req.DurationMin); err != nil {
		return nil, err
	}

	academy, sport, err := s.loadSport(ctx, req.AcademyID, req.Sport)
	if err != nil {
		return nil, err
	}

	start, _ := timeutil.ParseClock(req.StartTime)
	end := start + req.DurationMin

	if !withinHours(sport, start, end) {
		return nil, apperrors.Validation("Slot is outside operating hours", map[string]any{
			"operating_hours": fmt.Sprintf("%s-%s", sport.StartTime, sport.EndTime),
		}).WithReason(bookingserrors.ReasonOutOfHours)
	}

	if req.CourtNumber > sport.NumberOfCourts {
		return nil, apperrors.Validation("Court number is out of range for this sport", map[string]any{
			"court_number":     req.CourtNumber,
			"number_of_courts": sport.NumberOfCourts,
		})
	}

	table := sport.CourtTable(req.CourtNumber)
	if table == nil {
		return nil, apperrors.Validation("No pricing configured for this court", map[string]any{
			"court_number": req.CourtNumber,
		}).WithReason(bookingserrors.ReasonPricingMissing)
	}

	price := pricing.Quote(priceTiers(table), start, req.DurationMin)

	endTime, _ := timeutil.FormatClock(end)
	booking := &model.Booking{
		UserEmail:   req.UserEmail,
		AcademyID:   academy.ID,
		Sport:       sport.SportName,
		CourtNumber: req.CourtNumber,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     endTime,
		Price:       price,
		Status:      model.BookingStatusConfirmed,
	}

	lockID, err := s.acquireSlotLock(ctx, academy.ID, sport.SportName, req.CourtNumber, req.Date)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.verifySlotFree(txCtx, booking, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"academy_id", booking.AcademyID,
		"sport", booking.Sport,
		"court_number", booking.CourtNumber,
		"date", booking.Date,
		"start_time", booking.StartTime,
	)

	s.publishEvent(ctx, events.TypeBookingCreated, booking, academy.Name)
	return booking, nil
}

// Cancel flips a Confirmed booking to Cancelled. The record stays in the
// collection; only its status changes.
func (s *bookingService) Cancel(ctx context.Context, id, userEmail string) error {
	userEmail = sanitizer.SanitizeEmail(userEmail)

	booking, err := s.findOwned(ctx, id, userEmail)
	if err != nil {
		return err
	}

	if booking.Status == model.BookingStatusCancelled {
		return apperrors.Conflict("Booking is already cancelled").
			WithReason(bookingserrors.ReasonAlreadyCancelled)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.BookingStatusConfirmed, model.BookingStatusCancelled)
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}
	if !updated {
		// Lost a race with another cancel of the same booking.
		return apperrors.Conflict("Booking is already cancelled").
			WithReason(bookingserrors.ReasonAlreadyCancelled)
	}

	s.cfg.Log.Info("Booking cancelled successfully", "id", id, "user_email", userEmail)

	booking.Status = model.BookingStatusCancelled
	s.publishEvent(ctx, events.TypeBookingCancelled, booking, "")
	return nil
}

// Modify reschedules a booking in place, keeping its ID. The target slot
// goes through the same lock, hours, pricing, and overlap checks as a fresh
// commit, except the booking's own record never conflicts with itself.
func (s *bookingService) Modify(ctx context.Context, id, userEmail string, change *model.BookingChange) (*model.Booking, error) {
	userEmail = sanitizer.SanitizeEmail(userEmail)

	existing, err := s.findOwned(ctx, id, userEmail)
	if err != nil {
		return nil, err
	}

	if existing.Status == model.BookingStatusCancelled {
		return nil, apperrors.Conflict("Cancelled bookings cannot be modified").
			WithReason(bookingserrors.ReasonAlreadyCancelled)
	}

	if err := s.validator.ValidateChange(change); err != nil {
		s.cfg.Log.Warn("Booking change validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid booking change", map[string]any{"error": err.Error()})
	}

	merged := s.mergeChange(existing, change)

	academy, sport, err := s.loadSport(ctx, merged.AcademyID, merged.Sport)
	if err != nil {
		return nil, err
	}

	start, _ := timeutil.ParseClock(merged.StartTime)
	end, parseErr := timeutil.ParseClock(merged.EndTime)
	if parseErr != nil || end <= start {
		return nil, apperrors.Validation("Slot must end by midnight on the same day", nil)
	}
	durationMin := end - start
	if err := s.checkDuration(durationMin); err != nil {
		return nil, err
	}

	if !withinHours(sport, start, end) {
		return nil, apperrors.Validation("Slot is outside operating hours", map[string]any{
			"operating_hours": fmt.Sprintf("%s-%s", sport.StartTime, sport.EndTime),
		}).WithReason(bookingserrors.ReasonOutOfHours)
	}

	if merged.CourtNumber > sport.NumberOfCourts {
		return nil, apperrors.Validation("Court number is out of range for this sport", map[string]any{
			"court_number":     merged.CourtNumber,
			"number_of_courts": sport.NumberOfCourts,
		})
	}

	table := sport.CourtTable(merged.CourtNumber)
	if table == nil {
		return nil, apperrors.Validation("No pricing configured for this court", map[string]any{
			"court_number": merged.CourtNumber,
		}).WithReason(bookingserrors.ReasonPricingMissing)
	}
	merged.Price = pricing.Quote(priceTiers(table), start, durationMin)

	lockID, err := s.acquireSlotLock(ctx, academy.ID, sport.SportName, merged.CourtNumber, merged.Date)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.verifySlotFree(txCtx, merged, id); err != nil {
			return err
		}
		if err := s.repo.Reschedule(txCtx, id, merged); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id).
					WithReason(bookingserrors.ReasonNotFoundOrNotOwner)
			}
			return apperrors.Internal("Failed to reschedule booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to modify booking", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking modified successfully",
		"id", id,
		"court_number", merged.CourtNumber,
		"date", merged.Date,
		"start_time", merged.StartTime,
	)

	merged.ID = id
	s.publishEvent(ctx, events.TypeBookingModified, merged, academy.Name)
	return merged, nil
}

func (s *bookingService) FindByUser(ctx context.Context, userEmail string, limit int, offset int64) ([]*model.Booking, int64, error) {
	userEmail = sanitizer.SanitizeEmail(userEmail)
	if userEmail == "" {
		return nil, 0, apperrors.InvalidInput("User email cannot be empty")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userEmail)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings by user", "user_email", userEmail, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByUser(ctx, userEmail, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings by user", "user_email", userEmail, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

// --- Helpers ---

// checkDuration enforces the deployment-level slot length cap when one is
// configured.
func (s *bookingService) checkDuration(durationMin int) error {
	if s.cfg.MaxDurationMin > 0 && durationMin > s.cfg.MaxDurationMin {
		return apperrors.Validation("Slot duration exceeds the allowed maximum", map[string]any{
			"max_duration_min": s.cfg.MaxDurationMin,
		})
	}
	return nil
}

// findOwned loads a booking and checks ownership. Lookups that miss and
// lookups by the wrong owner are indistinguishable to the caller.
func (s *bookingService) findOwned(ctx context.Context, id, userEmail string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if userEmail == "" {
		return nil, apperrors.InvalidInput("User email cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", id).
				WithReason(bookingserrors.ReasonNotFoundOrNotOwner)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if booking.UserEmail != userEmail {
		return nil, apperrors.NotFoundWithID("Booking", id).
			WithReason(bookingserrors.ReasonNotFoundOrNotOwner)
	}

	return booking, nil
}

func (s *bookingService) loadSport(ctx context.Context, academyID, sportName string) (*model.Academy, *model.Sport, error) {
	academy, err := s.academies.FindByID(ctx, academyID)
	if err != nil {
		if errors.Is(err, academyerrors.ErrNotFound) || errors.Is(err, academyerrors.ErrInvalidID) {
			return nil, nil, apperrors.NotFoundWithID("Academy", academyID)
		}
		return nil, nil, apperrors.Internal("Failed to retrieve academy", err)
	}

	sport := academy.SportByName(sportName)
	if sport == nil {
		return nil, nil, apperrors.Validation("Academy does not offer this sport", map[string]any{
			"sport": sportName,
		}).WithReason(bookingserrors.ReasonSportNotOffered)
	}

	return academy, sport, nil
}

// verifySlotFree re-checks overlap inside the transaction. excludeID skips
// the booking being rescheduled so it never conflicts with itself.
func (s *bookingService) verifySlotFree(ctx context.Context, booking *model.Booking, excludeID string) error {
	existing, err := s.repo.FindConfirmedByCourtDate(ctx, booking.AcademyID, booking.Sport, booking.CourtNumber, booking.Date)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	start, _ := timeutil.ParseClock(booking.StartTime)
	end, _ := timeutil.ParseClock(booking.EndTime)

	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		bStart, errStart := timeutil.ParseClock(b.StartTime)
		bEnd, errEnd := timeutil.ParseClock(b.EndTime)
		if errStart != nil || errEnd != nil {
			continue
		}
		if timeutil.Overlaps(start, end, bStart, bEnd) {
			return apperrors.Conflict(fmt.Sprintf(
				"Slot overlaps with an existing booking (%s - %s)", b.StartTime, b.EndTime,
			)).WithReason(bookingserrors.ReasonSlotTaken)
		}
	}
	return nil
}

func (s *bookingService) mergeChange(existing *model.Booking, change *model.BookingChange) *model.Booking {
	merged := *existing

	if change.CourtNumber != nil {
		merged.CourtNumber = *change.CourtNumber
	}
	if change.Date != "" {
		merged.Date = change.Date
	}
	if change.StartTime != "" {
		merged.StartTime = change.StartTime
	}

	start, _ := timeutil.ParseClock(merged.StartTime)
	durationMin := currentDuration(existing)
	if change.DurationMin != nil {
		durationMin = *change.DurationMin
	}
	end, err := timeutil.FormatClock(start + durationMin)
	if err != nil {
		// Past-midnight slot; Modify rejects it when re-parsing the window.
		merged.EndTime = ""
	} else {
		merged.EndTime = end
	}

	return &merged
}

func currentDuration(b *model.Booking) int {
	start, errStart := timeutil.ParseClock(b.StartTime)
	end, errEnd := timeutil.ParseClock(b.EndTime)
	if errStart != nil || errEnd != nil {
		return 0
	}
	return end - start
}

func withinHours(sport *model.Sport, start, end int) bool {
	open, errOpen := timeutil.ParseClock(sport.StartTime)
	closeAt, errClose := timeutil.ParseClock(sport.EndTime)
	if errOpen != nil || errClose != nil {
		return false
	}
	return start >= open && end <= closeAt
}

func slotTaken(booked []*model.Booking, start, end int) bool {
	for _, b := range booked {
		bStart, errStart := timeutil.ParseClock(b.StartTime)
		bEnd, errEnd := timeutil.ParseClock(b.EndTime)
		if errStart != nil || errEnd != nil {
			continue
		}
		if timeutil.Overlaps(start, end, bStart, bEnd) {
			return true
		}
	}
	return false
}

func (s *bookingService) quoteCourt(sport *model.Sport, courtNumber, start, durationMin int) float64 {
	table := sport.CourtTable(courtNumber)
	if table == nil {
		return 0
	}
	return pricing.Quote(priceTiers(table), start, durationMin)
}

func priceTiers(table *model.CourtPricing) []pricing.Tier {
	tiers := make([]pricing.Tier, 0, len(table.Prices))
	for _, p := range table.Prices {
		mark, err := timeutil.ParseClock(p.Time)
		if err != nil {
			continue
		}
		tiers = append(tiers, pricing.Tier{HourMark: mark, UnitPrice: p.Price})
	}
	return tiers
}

// acquireSlotLock inserts the advisory lock document for a court and date.
// The key deliberately excludes the start time: overlapping intervals with
// different starts must contend on the same lock, otherwise two transactions
// inserting distinct documents could both commit. A duplicate key error
// means another request holds the court right now.
func (s *bookingService) acquireSlotLock(ctx context.Context, academyID, sport string, courtNumber int, date string) (string, error) {
	lockID := fmt.Sprintf("slot_%s_%s_%d_%s", academyID, sport, courtNumber, date)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This slot is currently being booked by another request. Please try again.").
				WithReason(bookingserrors.ReasonSlotTaken)
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *bookingService) publishEvent(ctx context.Context, eventType string, booking *model.Booking, academyName string) {
	if s.publisher == nil {
		return
	}

	payload := events.BookingEvent{
		BookingID:   booking.ID,
		UserEmail:   booking.UserEmail,
		AcademyID:   booking.AcademyID,
		AcademyName: academyName,
		Sport:       booking.Sport,
		CourtNumber: booking.CourtNumber,
		Date:        booking.Date,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Price:       booking.Price,
		Status:      booking.Status,
		OccurredAt:  time.Now().UTC(),
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.AcademyID).
		WithValue(payload).
		WithEventType(eventType).
		WithSource("bookings").
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build booking event", "event_type", eventType, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, events.TopicBookings, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
