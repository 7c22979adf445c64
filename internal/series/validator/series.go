package validator

import (
	"errors"
	"fmt"
	"regexp"
	"reservo/pkg/logger"
	"reservo/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	codeRegex      = regexp.MustCompile(`^[A-Z0-9]{8}$`)
	timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
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

type SeriesValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSeriesValidator(log *logger.Logger) *SeriesValidator {
	v := validator.New()

	if err := v.RegisterValidation("reservation_code", validateReservationCode); err != nil {
		log.Fatal("Failed to register 'reservation_code' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'time_of_day' validator",
			"error", err,
		)
	}

	log.Info("Series validator initialized successfully")

	return &SeriesValidator{
		validate: v,
		logger:   log,
	}
}

func validateReservationCode(fl validator.FieldLevel) bool {
	return codeRegex.MatchString(fl.Field().String())
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	return timeOfDayRegex.MatchString(fl.Field().String())
}

func (v *SeriesValidator) Validate(series *model.RecurringSeries) error {
	if err := v.validate.Struct(series); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateSemantics(series.Pattern, series.Weekdays, series.DaysOfMonth, series.StartTimeOfDay, series.EndTimeOfDay)
}

func (v *SeriesValidator) ValidateUpdate(update *model.RecurringSeriesUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.StartDate != nil && update.EndDate != nil && update.EndDate.Before(*update.StartDate) {
		return ValidationErrors{
			ValidationError{Field: "EndDate", Message: "end_date must not precede start_date"},
		}
	}
	if update.StartTimeOfDay != "" && update.EndTimeOfDay != "" && update.EndTimeOfDay <= update.StartTimeOfDay {
		return ValidationErrors{
			ValidationError{Field: "EndTimeOfDay", Message: "end_time_of_day must be after start_time_of_day"},
		}
	}
	return nil
}

// validateSemantics covers the cross-field rules struct tags cannot
// express: the daily window must be non-empty and the pattern must
// carry its matching day set.
func (v *SeriesValidator) validateSemantics(pattern string, weekdays, daysOfMonth []int, startTOD, endTOD string) error {
	var errs ValidationErrors

	// HH:MM strings compare correctly as text.
	if endTOD <= startTOD {
		errs = append(errs, ValidationError{
			Field:   "EndTimeOfDay",
			Message: "end_time_of_day must be after start_time_of_day",
		})
	}

	switch pattern {
	case model.PatternWeekly:
		if len(weekdays) == 0 {
			errs = append(errs, ValidationError{
				Field:   "Weekdays",
				Message: "weekly pattern requires at least one weekday",
			})
		}
	case model.PatternMonthly:
		if len(daysOfMonth) == 0 {
			errs = append(errs, ValidationError{
				Field:   "DaysOfMonth",
				Message: "monthly pattern requires at least one day of month",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *SeriesValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtefield":
			message = fmt.Sprintf("%s must not precede %s", err.Field(), err.Param())
		case "time_of_day":
			message = fmt.Sprintf("%s must be a 24-hour HH:MM time", err.Field())
		case "reservation_code":
			message = fmt.Sprintf("%s must be 8 uppercase letters or digits", err.Field())
		case "len":
			message = fmt.Sprintf("%s must be exactly %s characters", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
