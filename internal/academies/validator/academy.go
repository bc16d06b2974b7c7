package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"courtside/pkg/logger"
	"courtside/pkg/model"
	"courtside/pkg/timeutil"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AcademyValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAcademyValidator(log *logger.Logger) *AcademyValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register 'clock' validator", "error", err)
	}

	log.Info("Academy validator initialized successfully")

	return &AcademyValidator{
		validate: v,
		logger:   log,
	}
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := timeutil.ParseClock(fl.Field().String())
	return err == nil
}

func (v *AcademyValidator) Validate(academy *model.Academy) error {
	if err := v.validate.Struct(academy); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateSports(academy.Sports)
}

func (v *AcademyValidator) ValidateSports(sports []model.Sport) error {
	for i := range sports {
		if err := v.validate.Struct(&sports[i]); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				return v.translateValidationErrors(validationErrs)
			}
			return err
		}
	}

	return v.validateSports(sports)
}

// validateSports enforces the cross-field rules the struct tags cannot
// express: unique sport names, a sane operating window, court numbers
// within range, and at most one price tier per hour mark.
func (v *AcademyValidator) validateSports(sports []model.Sport) error {
	seenSports := make(map[string]bool, len(sports))

	for _, sport := range sports {
		if seenSports[sport.SportName] {
			return ValidationErrors{
				ValidationError{Field: "SportName", Message: fmt.Sprintf("duplicate sport: %s", sport.SportName)},
			}
		}
		seenSports[sport.SportName] = true

		open, errOpen := timeutil.ParseClock(sport.StartTime)
		closeAt, errClose := timeutil.ParseClock(sport.EndTime)
		if errOpen == nil && errClose == nil && closeAt <= open {
			return ValidationErrors{
				ValidationError{Field: "EndTime", Message: fmt.Sprintf("%s: end_time must be after start_time", sport.SportName)},
			}
		}

		seenCourts := make(map[int]bool, len(sport.Pricing))
		for _, table := range sport.Pricing {
			if table.CourtNumber > sport.NumberOfCourts {
				return ValidationErrors{
					ValidationError{
						Field:   "CourtNumber",
						Message: fmt.Sprintf("%s: court %d exceeds court count %d", sport.SportName, table.CourtNumber, sport.NumberOfCourts),
					},
				}
			}
			if seenCourts[table.CourtNumber] {
				return ValidationErrors{
					ValidationError{
						Field:   "CourtNumber",
						Message: fmt.Sprintf("%s: duplicate pricing for court %d", sport.SportName, table.CourtNumber),
					},
				}
			}
			seenCourts[table.CourtNumber] = true

			seenMarks := make(map[string]bool, len(table.Prices))
			for _, tier := range table.Prices {
				if seenMarks[tier.Time] {
					return ValidationErrors{
						ValidationError{
							Field:   "Prices",
							Message: fmt.Sprintf("%s court %d: duplicate price tier at %s", sport.SportName, table.CourtNumber, tier.Time),
						},
					}
				}
				seenMarks[tier.Time] = true
			}
		}
	}

	return nil
}

func (v *AcademyValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +919812345678)", err.Field())
		case "clock":
			message = fmt.Sprintf("%s must be a HH:MM clock value between 00:00 and 23:59", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
