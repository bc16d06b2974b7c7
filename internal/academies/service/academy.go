package service

import (
	"context"
	"errors"
	"sync"

	academyerrors "courtside/internal/academies/errors"
	"courtside/internal/academies/repository"
	"courtside/internal/academies/validator"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
	"courtside/pkg/model"
	"courtside/pkg/sanitizer"
)

type AcademyService interface {
	Onboard(ctx context.Context, academy *model.Academy) error
	GetByID(ctx context.Context, id string) (*model.Academy, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Academy, int64, error)
	ConfigureSports(ctx context.Context, id string, sports []model.Sport) (*model.Academy, error)
	Search(ctx context.Context, city, sport string, limit int, offset int64) ([]*model.Academy, int64, error)
}

type academyService struct {
	repo      repository.AcademyRepository
	validator *validator.AcademyValidator
	cfg       *config.Config
}

func NewAcademyService(
	repo repository.AcademyRepository,
	validator *validator.AcademyValidator,
	cfg *config.Config,
) AcademyService {
	return &academyService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *academyService) Onboard(ctx context.Context, academy *model.Academy) error {
	s.sanitize(academy)

	if err := s.validator.Validate(academy); err != nil {
		s.cfg.Log.Warn("Academy validation failed", "error", err)
		return apperrors.Validation("Academy validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, academy); err != nil {
		if errors.Is(err, academyerrors.ErrDuplicateEmail) {
			return apperrors.Conflict("An academy with this email is already registered")
		}
		s.cfg.Log.Error("Failed to create academy", "error", err)
		return apperrors.Internal("Failed to create academy", err)
	}

	s.cfg.Log.Info("Academy onboarded successfully",
		"id", academy.ID,
		"name", academy.Name,
		"city", academy.City,
		"sports", len(academy.Sports),
	)
	return nil
}

func (s *academyService) GetByID(ctx context.Context, id string) (*model.Academy, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Academy ID cannot be empty")
	}

	academy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, academyerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Academy", id)
		}
		if errors.Is(err, academyerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid academy ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve academy", err)
	}

	return academy, nil
}

func (s *academyService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Academy, int64, error) {
	var count int64
	var academies []*model.Academy
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count academies", "error", errCount)
			errCount = apperrors.Internal("Failed to count academies", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		academies, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list academies", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve academies", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return academies, count, nil
}

// ConfigureSports replaces the academy's entire sports array. Existing
// bookings keep their recorded price; reconfiguration only affects future
// quotes.
func (s *academyService) ConfigureSports(ctx context.Context, id string, sports []model.Sport) (*model.Academy, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Academy ID cannot be empty")
	}

	for i := range sports {
		sports[i].SportName = sanitizer.SanitizeName(sports[i].SportName)
	}

	if err := s.validator.ValidateSports(sports); err != nil {
		s.cfg.Log.Warn("Sports configuration validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Sports configuration validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.ReplaceSports(ctx, id, sports); err != nil {
		if errors.Is(err, academyerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Academy", id)
		}
		if errors.Is(err, academyerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid academy ID format")
		}
		s.cfg.Log.Error("Failed to configure sports", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to configure sports", err)
	}

	s.cfg.Log.Info("Sports configured successfully", "id", id, "sports", len(sports))
	return s.GetByID(ctx, id)
}

func (s *academyService) Search(ctx context.Context, city, sport string, limit int, offset int64) ([]*model.Academy, int64, error) {
	city = sanitizer.SanitizeCity(city)
	sport = sanitizer.SanitizeName(sport)

	if city == "" && sport == "" {
		return nil, 0, apperrors.InvalidInput("At least one of 'city' or 'sport' is required")
	}

	var count int64
	var academies []*model.Academy
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountBySearch(ctx, city, sport)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count academies by search", "city", city, "sport", sport, "error", errCount)
			errCount = apperrors.Internal("Failed to count academies", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		academies, errFind = s.repo.Search(ctx, city, sport, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search academies", "city", city, "sport", sport, "error", errFind)
			errFind = apperrors.Internal("Failed to search academies", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Academy search completed",
		"city", city,
		"sport", sport,
		"count", len(academies),
		"total_count", count,
	)
	return academies, count, nil
}

func (s *academyService) sanitize(a *model.Academy) {
	a.Name = sanitizer.SanitizeName(a.Name)
	a.Email = sanitizer.SanitizeEmail(a.Email)
	a.Phone = sanitizer.SanitizePhone(a.Phone)
	a.City = sanitizer.SanitizeCity(a.City)
	for i := range a.Sports {
		a.Sports[i].SportName = sanitizer.SanitizeName(a.Sports[i].SportName)
	}
}
