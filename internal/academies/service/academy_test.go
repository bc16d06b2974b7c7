package service

import (
	"context"
	"testing"
	"time"

	academyerrors "courtside/internal/academies/errors"
	"courtside/internal/academies/validator"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repository
// ────────────────────────────────────────────────

type mockAcademyRepository struct {
	createFunc        func(ctx context.Context, academy *model.Academy) error
	findByIDFunc      func(ctx context.Context, id string) (*model.Academy, error)
	replaceSportsFunc func(ctx context.Context, id string, sports []model.Sport) error
	searchFunc        func(ctx context.Context, city, sport string, limit int, offset int64) ([]*model.Academy, error)
	countBySearchFunc func(ctx context.Context, city, sport string) (int64, error)
}

func (m *mockAcademyRepository) Create(ctx context.Context, academy *model.Academy) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, academy)
	}
	academy.ID = "507f1f77bcf86cd799439011"
	return nil
}

func (m *mockAcademyRepository) FindByID(ctx context.Context, id string) (*model.Academy, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, academyerrors.ErrNotFound
}

func (m *mockAcademyRepository) FindByEmail(ctx context.Context, email string) (*model.Academy, error) {
	return nil, academyerrors.ErrNotFound
}

func (m *mockAcademyRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Academy, error) {
	return nil, nil
}

func (m *mockAcademyRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockAcademyRepository) ReplaceSports(ctx context.Context, id string, sports []model.Sport) error {
	if m.replaceSportsFunc != nil {
		return m.replaceSportsFunc(ctx, id, sports)
	}
	return nil
}

func (m *mockAcademyRepository) Search(ctx context.Context, city, sport string, limit int, offset int64) ([]*model.Academy, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, city, sport, limit, offset)
	}
	return nil, nil
}

func (m *mockAcademyRepository) CountBySearch(ctx context.Context, city, sport string) (int64, error) {
	if m.countBySearchFunc != nil {
		return m.countBySearchFunc(ctx, city, sport)
	}
	return 0, nil
}

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
	}
}

func newTestService(t *testing.T, repo *mockAcademyRepository) AcademyService {
	t.Helper()
	cfg := testConfig(t)
	return NewAcademyService(repo, validator.NewAcademyValidator(cfg.Log), cfg)
}

func validAcademy() *model.Academy {
	return &model.Academy{
		Name:    "Ace Sports Academy",
		Email:   "Contact@AceSports.IN",
		Phone:   "+919812345678",
		Address: "12 MG Road",
		City:    "Pune",
		Sports: []model.Sport{
			{
				SportName:      "Badminton",
				NumberOfCourts: 2,
				StartTime:      "06:00",
				EndTime:        "22:00",
				Pricing: []model.CourtPricing{
					{CourtNumber: 1, Prices: []model.PriceTier{{Time: "06:00", Price: 400}}},
				},
			},
		},
	}
}

// ────────────────────────────────────────────────
// Onboard
// ────────────────────────────────────────────────

func TestOnboardSanitizesFields(t *testing.T) {
	var stored *model.Academy
	repo := &mockAcademyRepository{
		createFunc: func(ctx context.Context, academy *model.Academy) error {
			stored = academy
			academy.ID = "507f1f77bcf86cd799439011"
			return nil
		},
	}
	svc := newTestService(t, repo)

	if err := svc.Onboard(context.Background(), validAcademy()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.Email != "contact@acesports.in" {
		t.Errorf("email not sanitized: %q", stored.Email)
	}
	if stored.Name != "ace sports academy" {
		t.Errorf("name not sanitized: %q", stored.Name)
	}
	if stored.City != "pune" {
		t.Errorf("city not sanitized: %q", stored.City)
	}
	if stored.Sports[0].SportName != "badminton" {
		t.Errorf("sport name not sanitized: %q", stored.Sports[0].SportName)
	}
}

func TestOnboardDuplicateEmail(t *testing.T) {
	repo := &mockAcademyRepository{
		createFunc: func(ctx context.Context, academy *model.Academy) error {
			return academyerrors.ErrDuplicateEmail
		},
	}
	svc := newTestService(t, repo)

	err := svc.Onboard(context.Background(), validAcademy())
	if err == nil {
		t.Fatal("expected conflict error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict code, got %v", err)
	}
}

func TestOnboardRejectsInvalidOperatingWindow(t *testing.T) {
	academy := validAcademy()
	academy.Sports[0].StartTime = "22:00"
	academy.Sports[0].EndTime = "06:00"

	svc := newTestService(t, &mockAcademyRepository{})

	if err := svc.Onboard(context.Background(), academy); err == nil {
		t.Fatal("expected validation error for inverted operating window")
	}
}

// ────────────────────────────────────────────────
// ConfigureSports
// ────────────────────────────────────────────────

func TestConfigureSportsReplacesWholeArray(t *testing.T) {
	var replaced []model.Sport
	repo := &mockAcademyRepository{
		replaceSportsFunc: func(ctx context.Context, id string, sports []model.Sport) error {
			replaced = sports
			return nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.Academy, error) {
			return &model.Academy{ID: id, Sports: replaced}, nil
		},
	}
	svc := newTestService(t, repo)

	sports := []model.Sport{
		{SportName: "Tennis", NumberOfCourts: 4, StartTime: "07:00", EndTime: "21:00"},
	}
	academy, err := svc.ConfigureSports(context.Background(), "507f1f77bcf86cd799439011", sports)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(replaced) != 1 || replaced[0].SportName != "tennis" {
		t.Errorf("replacement payload wrong: %+v", replaced)
	}
	if len(academy.Sports) != 1 {
		t.Errorf("returned academy should carry the new sports array, got %+v", academy.Sports)
	}
}

func TestConfigureSportsRejectsDuplicateTier(t *testing.T) {
	svc := newTestService(t, &mockAcademyRepository{})

	sports := []model.Sport{
		{
			SportName:      "badminton",
			NumberOfCourts: 1,
			StartTime:      "06:00",
			EndTime:        "22:00",
			Pricing: []model.CourtPricing{
				{
					CourtNumber: 1,
					Prices: []model.PriceTier{
						{Time: "06:00", Price: 400},
						{Time: "06:00", Price: 500},
					},
				},
			},
		},
	}
	if _, err := svc.ConfigureSports(context.Background(), "507f1f77bcf86cd799439011", sports); err == nil {
		t.Fatal("expected validation error for duplicate price tier")
	}
}

func TestConfigureSportsRejectsCourtBeyondCount(t *testing.T) {
	svc := newTestService(t, &mockAcademyRepository{})

	sports := []model.Sport{
		{
			SportName:      "badminton",
			NumberOfCourts: 2,
			StartTime:      "06:00",
			EndTime:        "22:00",
			Pricing: []model.CourtPricing{
				{CourtNumber: 3, Prices: []model.PriceTier{{Time: "06:00", Price: 400}}},
			},
		},
	}
	if _, err := svc.ConfigureSports(context.Background(), "507f1f77bcf86cd799439011", sports); err == nil {
		t.Fatal("expected validation error for court beyond configured count")
	}
}

// ────────────────────────────────────────────────
// Search
// ────────────────────────────────────────────────

func TestSearchRequiresAFilter(t *testing.T) {
	svc := newTestService(t, &mockAcademyRepository{})

	if _, _, err := svc.Search(context.Background(), "", "", 10, 0); err == nil {
		t.Fatal("expected error when both filters are empty")
	}
}

func TestSearchNormalizesFilters(t *testing.T) {
	var gotCity, gotSport string
	repo := &mockAcademyRepository{
		searchFunc: func(ctx context.Context, city, sport string, limit int, offset int64) ([]*model.Academy, error) {
			gotCity, gotSport = city, sport
			return []*model.Academy{{ID: "507f1f77bcf86cd799439011", Name: "ace"}}, nil
		},
		countBySearchFunc: func(ctx context.Context, city, sport string) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestService(t, repo)

	academies, total, err := svc.Search(context.Background(), "  Pune ", "Badminton", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCity != "pune" || gotSport != "badminton" {
		t.Errorf("filters not normalized: city=%q sport=%q", gotCity, gotSport)
	}
	if total != 1 || len(academies) != 1 {
		t.Errorf("unexpected result: total=%d len=%d", total, len(academies))
	}
}
