package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "courtside/internal/bookings/errors"
	"courtside/internal/bookings/validator"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/kafka"
	"courtside/pkg/logger"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	createFunc                   func(ctx context.Context, booking *model.Booking) error
	findByIDFunc                 func(ctx context.Context, id string) (*model.Booking, error)
	findConfirmedBySportDateFunc func(ctx context.Context, academyID, sport, date string) ([]*model.Booking, error)
	findConfirmedByCourtDateFunc func(ctx context.Context, academyID, sport string, courtNumber int, date string) ([]*model.Booking, error)
	findByUserFunc               func(ctx context.Context, userEmail string, limit int, offset int64) ([]*model.Booking, error)
	countByUserFunc              func(ctx context.Context, userEmail string) (int64, error)
	updateStatusFunc             func(ctx context.Context, id, fromStatus, toStatus string) (bool, error)
	rescheduleFunc               func(ctx context.Context, id string, booking *model.Booking) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "64b000000000000000000001"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindConfirmedBySportDate(ctx context.Context, academyID, sport, date string) ([]*model.Booking, error) {
	if m.findConfirmedBySportDateFunc != nil {
		return m.findConfirmedBySportDateFunc(ctx, academyID, sport, date)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindConfirmedByCourtDate(ctx context.Context, academyID, sport string, courtNumber int, date string) ([]*model.Booking, error) {
	if m.findConfirmedByCourtDateFunc != nil {
		return m.findConfirmedByCourtDateFunc(ctx, academyID, sport, courtNumber, date)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userEmail string, limit int, offset int64) ([]*model.Booking, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userEmail, limit, offset)
	}
	return nil, nil
}

func (m *mockBookingRepository) CountByUser(ctx context.Context, userEmail string) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userEmail)
	}
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string) (bool, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, fromStatus, toStatus)
	}
	return true, nil
}

func (m *mockBookingRepository) Reschedule(ctx context.Context, id string, booking *model.Booking) error {
	if m.rescheduleFunc != nil {
		return m.rescheduleFunc(ctx, id, booking)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleted    []string
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockAcademyReader struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Academy, error)
}

func (m *mockAcademyReader) FindByID(ctx context.Context, id string) (*model.Academy, error) {
	return m.findByIDFunc(ctx, id)
}

type mockPublisher struct {
	published []kafka.Message
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, msg kafka.Message) error {
	m.published = append(m.published, msg)
	return nil
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const (
	testAcademyID = "507f1f77bcf86cd799439011"
	testBookingID = "64b000000000000000000001"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		SlotLockTTL:  10 * time.Second,
	}
}

func testAcademy() *model.Academy {
	return &model.Academy{
		ID:   testAcademyID,
		Name: "ace sports academy",
		City: "pune",
		Sports: []model.Sport{
			{
				SportName:      "badminton",
				NumberOfCourts: 3,
				StartTime:      "06:00",
				EndTime:        "22:00",
				Pricing: []model.CourtPricing{
					{
						CourtNumber: 1,
						Prices: []model.PriceTier{
							{Time: "06:00", Price: 400},
							{Time: "07:00", Price: 500},
						},
					},
					{
						CourtNumber: 2,
						Prices: []model.PriceTier{
							{Time: "06:00", Price: 300},
						},
					},
					// Court 3 has no price table on purpose.
				},
			},
		},
	}
}

func newTestService(t *testing.T, repo *mockBookingRepository, locks *mockSlotLockRepository, publisher *mockPublisher) BookingService {
	t.Helper()
	cfg := testConfig(t)
	academies := &mockAcademyReader{
		findByIDFunc: func(ctx context.Context, id string) (*model.Academy, error) {
			return testAcademy(), nil
		},
	}
	return NewBookingService(repo, locks, academies, publisher, validator.NewBookingValidator(cfg.Log), cfg)
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr.Reason()
}

// ────────────────────────────────────────────────
// CheckAvailability
// ────────────────────────────────────────────────

func TestCheckAvailabilityReturnsCourtsInAscendingOrder(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, &mockPublisher{})

	results, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		Date:        "2026-09-01",
		StartTime:   "06:30",
		DurationMin: 60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 courts, got %d", len(results))
	}
	for i, row := range results {
		if row.CourtNumber != i+1 {
			t.Errorf("court at position %d is %d, want %d", i, row.CourtNumber, i+1)
		}
		if !row.Available {
			t.Errorf("court %d should be available", row.CourtNumber)
		}
	}

	// 06:30-07:30 on court 1: half of the 400 hour plus half of the 500 hour.
	if results[0].Price != 450 {
		t.Errorf("court 1 price = %v, want 450", results[0].Price)
	}
	// Court 2 has only the 06:00 tier; the 07:00 half hour is free.
	if results[1].Price != 150 {
		t.Errorf("court 2 price = %v, want 150", results[1].Price)
	}
	// Court 3 has no table at all; available but unpriced.
	if results[2].Price != 0 {
		t.Errorf("court 3 price = %v, want 0", results[2].Price)
	}
}

func TestCheckAvailabilityMarksBookedCourtUnavailable(t *testing.T) {
	repo := &mockBookingRepository{
		findConfirmedBySportDateFunc: func(ctx context.Context, academyID, sport, date string) ([]*model.Booking, error) {
			return []*model.Booking{
				{CourtNumber: 2, StartTime: "07:00", EndTime: "08:00", Status: model.BookingStatusConfirmed},
			}, nil
		},
	}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, &mockPublisher{})

	results, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		Date:        "2026-09-01",
		StartTime:   "07:30",
		DurationMin: 60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[1].Available {
		t.Error("court 2 should be unavailable due to overlap")
	}
	if results[1].Price != 0 {
		t.Errorf("unavailable court must carry price 0, got %v", results[1].Price)
	}
	if !results[0].Available || !results[2].Available {
		t.Error("courts 1 and 3 should stay available")
	}
}

func TestCheckAvailabilityAdjacentSlotsDoNotConflict(t *testing.T) {
	repo := &mockBookingRepository{
		findConfirmedBySportDateFunc: func(ctx context.Context, academyID, sport, date string) ([]*model.Booking, error) {
			return []*model.Booking{
				{CourtNumber: 1, StartTime: "07:00", EndTime: "08:00", Status: model.BookingStatusConfirmed},
			}, nil
		},
	}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, &mockPublisher{})

	results, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		Date:        "2026-09-01",
		StartTime:   "08:00",
		DurationMin: 60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !results[0].Available {
		t.Error("a slot starting exactly when another ends must not conflict")
	}
}

func TestCheckAvailabilityOutOfHours(t *testing.T) {
	repo := &mockBookingRepository{
		findConfirmedBySportDateFunc: func(ctx context.Context, academyID, sport, date string) ([]*model.Booking, error) {
			t.Fatal("bookings must not be fetched for an out-of-hours query")
			return nil, nil
		},
	}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, &mockPublisher{})

	results, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		Date:        "2026-09-01",
		StartTime:   "21:30",
		DurationMin: 60, // ends 22:30, past closing
	})
	if err != nil {
		t.Fatalf("out-of-hours query should not error: %v", err)
	}

	for _, row := range results {
		if row.Available || row.Price != 0 {
			t.Errorf("court %d: out-of-hours must report unavailable at price 0, got %+v", row.CourtNumber, row)
		}
	}
}

func TestCheckAvailabilitySportNotOffered(t *testing.T) {
	svc := newTestService(t, &mockBookingRepository{}, &mockSlotLockRepository{}, &mockPublisher{})

	_, err := svc.CheckAvailability(context.Background(), &model.AvailabilityQuery{
		AcademyID:   testAcademyID,
		Sport:       "cricket",
		Date:        "2026-09-01",
		StartTime:   "07:00",
		DurationMin: 60,
	})
	if err == nil {
		t.Fatal("expected error for unknown sport")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonSportNotOffered {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonSportNotOffered)
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreateBookingSuccess(t *testing.T) {
	locks := &mockSlotLockRepository{}
	publisher := &mockPublisher{}
	svc := newTestService(t, &mockBookingRepository{}, locks, publisher)

	booking, err := svc.Create(context.Background(), &model.BookingRequest{
		UserEmail:   "Player@Example.COM",
		AcademyID:   testAcademyID,
		Sport:       "Badminton",
		CourtNumber: 1,
		Date:        "2026-09-01",
		StartTime:   "06:30",
		DurationMin: 90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.UserEmail != "player@example.com" {
		t.Errorf("email not sanitized: %q", booking.UserEmail)
	}
	if booking.Sport != "badminton" {
		t.Errorf("sport not sanitized: %q", booking.Sport)
	}
	if booking.EndTime != "08:00" {
		t.Errorf("end time = %q, want 08:00", booking.EndTime)
	}
	// 06:30-08:00 on court 1: 30min at 400 plus 60min at 500.
	if booking.Price != 700 {
		t.Errorf("price = %v, want 700", booking.Price)
	}
	if booking.Status != model.BookingStatusConfirmed {
		t.Errorf("status = %q, want %q", booking.Status, model.BookingStatusConfirmed)
	}

	if len(locks.deleted) != 1 {
		t.Errorf("slot lock should be released exactly once, got %d", len(locks.deleted))
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	if got := publisher.published[0].GetEventType(); got != "booking.created" {
		t.Errorf("event type = %q, want booking.created", got)
	}
}

func TestCreateBookingOverlapRejectedInTransaction(t *testing.T) {
	repo := &mockBookingRepository{
		findConfirmedByCourtDateFunc: func(ctx context.Context, academyID, sport string, courtNumber int, date string) ([]*model.Booking, error) {
			return []*model.Booking{
				{ID: "64b000000000000000000009", CourtNumber: 1, StartTime: "07:00", EndTime: "08:00"},
			}, nil
		},
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("insert must not run when the slot is taken")
			return nil
		},
	}
	locks := &mockSlotLockRepository{}
	svc := newTestService(t, repo, locks, &mockPublisher{})

	_, err := svc.Create(context.Background(), &model.BookingRequest{
		UserEmail:   "player@example.com",
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		CourtNumber: 1,
		Date:        "2026-09-01",
		StartTime:   "07:30",
		DurationMin: 60,
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonSlotTaken {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonSlotTaken)
	}
	if len(locks.deleted) != 1 {
		t.Errorf("lock must be released on conflict, got %d deletes", len(locks.deleted))
	}
}

func TestCreateBookingConcurrentCommitLosesLockRace(t *testing.T) {
	locks := &mockSlotLockRepository{
		createFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, mongo.WriteException{
				WriteErrors: []mongo.WriteError{{Code: 11000}},
			}
		},
	}
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("insert must not run when the lock is held elsewhere")
			return nil
		},
	}
	svc := newTestService(t, repo, locks, &mockPublisher{})

	_, err := svc.Create(context.Background(), &model.BookingRequest{
		UserEmail:   "player@example.com",
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		CourtNumber: 1,
		Date:        "2026-09-01",
		StartTime:   "07:00",
		DurationMin: 60,
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonSlotTaken {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonSlotTaken)
	}
}

func TestCreateCommitsOnSameCourtDateShareOneLock(t *testing.T) {
	var lockIDs []string
	locks := &mockSlotLockRepository{
		createFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			lockIDs = append(lockIDs, lock.ID)
			return lock, nil
		},
	}
	svc := newTestService(t, &mockBookingRepository{}, locks, &mockPublisher{})

	// 10:00-11:00 and 10:30-11:30 overlap but start at different times. If
	// the lock key varied by start time, both commits could run their
	// overlap checks concurrently and both insert.
	for _, start := range []string{"10:00", "10:30"} {
		_, err := svc.Create(context.Background(), &model.BookingRequest{
			UserEmail:   "player@example.com",
			AcademyID:   testAcademyID,
			Sport:       "badminton",
			CourtNumber: 1,
			Date:        "2026-09-01",
			StartTime:   start,
			DurationMin: 60,
		})
		if err != nil {
			t.Fatalf("unexpected error for start %s: %v", start, err)
		}
	}

	if len(lockIDs) != 2 || lockIDs[0] != lockIDs[1] {
		t.Errorf("commits on the same court and date must contend on one lock, got %v", lockIDs)
	}
	if strings.Contains(lockIDs[0], "10:00") {
		t.Errorf("lock key must not include the start time: %q", lockIDs[0])
	}
}

func TestCreateBookingCourtOutOfRange(t *testing.T) {
	svc := newTestService(t, &mockBookingRepository{}, &mockSlotLockRepository{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), &model.BookingRequest{
		UserEmail:   "player@example.com",
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		CourtNumber: 4,
		Date:        "2026-09-01",
		StartTime:   "07:00",
		DurationMin: 60,
	})
	if err == nil {
		t.Fatal("expected error for court beyond the sport's count")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if appErr.Reason() == bookingserrors.ReasonPricingMissing {
		t.Error("an out-of-range court must not be reported as missing pricing")
	}
}

func TestCreateBookingDurationAboveConfiguredCap(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxDurationMin = 120
	academies := &mockAcademyReader{
		findByIDFunc: func(ctx context.Context, id string) (*model.Academy, error) {
			return testAcademy(), nil
		},
	}
	svc := NewBookingService(&mockBookingRepository{}, &mockSlotLockRepository{}, academies,
		&mockPublisher{}, validator.NewBookingValidator(cfg.Log), cfg)

	_, err := svc.Create(context.Background(), &model.BookingRequest{
		UserEmail:   "player@example.com",
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		CourtNumber: 1,
		Date:        "2026-09-01",
		StartTime:   "07:00",
		DurationMin: 180,
	})
	if err == nil {
		t.Fatal("expected validation error above the configured cap")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateBookingOutOfHours(t *testing.T) {
	svc := newTestService(t, &mockBookingRepository{}, &mockSlotLockRepository{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), &model.BookingRequest{
		UserEmail:   "player@example.com",
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		CourtNumber: 1,
		Date:        "2026-09-01",
		StartTime:   "05:00",
		DurationMin: 60,
	})
	if err == nil {
		t.Fatal("expected out-of-hours error")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonOutOfHours {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonOutOfHours)
	}
}

func TestCreateBookingPricingMissing(t *testing.T) {
	svc := newTestService(t, &mockBookingRepository{}, &mockSlotLockRepository{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), &model.BookingRequest{
		UserEmail:   "player@example.com",
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		CourtNumber: 3,
		Date:        "2026-09-01",
		StartTime:   "07:00",
		DurationMin: 60,
	})
	if err == nil {
		t.Fatal("expected pricing error")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonPricingMissing {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonPricingMissing)
	}
}

func TestCreateBookingPastMidnightRejected(t *testing.T) {
	svc := newTestService(t, &mockBookingRepository{}, &mockSlotLockRepository{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), &model.BookingRequest{
		UserEmail:   "player@example.com",
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		CourtNumber: 1,
		Date:        "2026-09-01",
		StartTime:   "23:30",
		DurationMin: 60,
	})
	if err == nil {
		t.Fatal("expected validation error for a slot crossing midnight")
	}
}

// ────────────────────────────────────────────────
// Cancel
// ────────────────────────────────────────────────

func confirmedBooking() *model.Booking {
	return &model.Booking{
		ID:          testBookingID,
		UserEmail:   "player@example.com",
		AcademyID:   testAcademyID,
		Sport:       "badminton",
		CourtNumber: 1,
		Date:        "2026-09-01",
		StartTime:   "07:00",
		EndTime:     "08:00",
		Price:       500,
		Status:      model.BookingStatusConfirmed,
	}
}

func TestCancelBooking(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, publisher)

	if err := svc.Cancel(context.Background(), testBookingID, "player@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	if got := publisher.published[0].GetEventType(); got != "booking.cancelled" {
		t.Errorf("event type = %q, want booking.cancelled", got)
	}
}

func TestCancelBookingTwiceReturnsAlreadyCancelled(t *testing.T) {
	cancelled := confirmedBooking()
	cancelled.Status = model.BookingStatusCancelled

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return cancelled, nil
		},
	}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, &mockPublisher{})

	err := svc.Cancel(context.Background(), testBookingID, "player@example.com")
	if err == nil {
		t.Fatal("expected already-cancelled error")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonAlreadyCancelled {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonAlreadyCancelled)
	}
}

func TestCancelBookingLostRaceReturnsAlreadyCancelled(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		updateStatusFunc: func(ctx context.Context, id, fromStatus, toStatus string) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, &mockPublisher{})

	err := svc.Cancel(context.Background(), testBookingID, "player@example.com")
	if err == nil {
		t.Fatal("expected already-cancelled error after lost race")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonAlreadyCancelled {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonAlreadyCancelled)
	}
}

func TestCancelBookingWrongOwner(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
	}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, &mockPublisher{})

	err := svc.Cancel(context.Background(), testBookingID, "intruder@example.com")
	if err == nil {
		t.Fatal("expected ownership error")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonNotFoundOrNotOwner {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonNotFoundOrNotOwner)
	}
}

// ────────────────────────────────────────────────
// Modify
// ────────────────────────────────────────────────

func TestModifyBookingSkipsOwnRecordInOverlapCheck(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		findConfirmedByCourtDateFunc: func(ctx context.Context, academyID, sport string, courtNumber int, date string) ([]*model.Booking, error) {
			// Only the booking being moved occupies the window.
			return []*model.Booking{confirmedBooking()}, nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, publisher)

	newStart := "07:30"
	updated, err := svc.Modify(context.Background(), testBookingID, "player@example.com", &model.BookingChange{
		StartTime: newStart,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.StartTime != "07:30" || updated.EndTime != "08:30" {
		t.Errorf("window = %s-%s, want 07:30-08:30", updated.StartTime, updated.EndTime)
	}
	// 07:30-08:30 on court 1: half the 500 hour, nothing configured past 08:00.
	if updated.Price != 250 {
		t.Errorf("price = %v, want 250", updated.Price)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	if got := publisher.published[0].GetEventType(); got != "booking.modified" {
		t.Errorf("event type = %q, want booking.modified", got)
	}
}

func TestModifyBookingConflictsWithOtherBooking(t *testing.T) {
	other := confirmedBooking()
	other.ID = "64b000000000000000000002"
	other.StartTime = "08:00"
	other.EndTime = "09:00"

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		findConfirmedByCourtDateFunc: func(ctx context.Context, academyID, sport string, courtNumber int, date string) ([]*model.Booking, error) {
			return []*model.Booking{confirmedBooking(), other}, nil
		},
	}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, &mockPublisher{})

	_, err := svc.Modify(context.Background(), testBookingID, "player@example.com", &model.BookingChange{
		StartTime: "08:30",
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonSlotTaken {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonSlotTaken)
	}
}

func TestModifyCancelledBookingRejected(t *testing.T) {
	cancelled := confirmedBooking()
	cancelled.Status = model.BookingStatusCancelled

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return cancelled, nil
		},
	}
	svc := newTestService(t, repo, &mockSlotLockRepository{}, &mockPublisher{})

	_, err := svc.Modify(context.Background(), testBookingID, "player@example.com", &model.BookingChange{
		StartTime: "09:00",
	})
	if err == nil {
		t.Fatal("expected error for modifying a cancelled booking")
	}
	if reason := reasonOf(t, err); reason != bookingserrors.ReasonAlreadyCancelled {
		t.Errorf("reason = %q, want %q", reason, bookingserrors.ReasonAlreadyCancelled)
	}
}
