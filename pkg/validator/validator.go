package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
)

// DateLayout is the only date format accepted from users.
const DateLayout = "2006-01-02"

// Validator provides validation functionality
type Validator interface {
	Validate(obj interface{}) error
	ValidateField(field string, value interface{}, tag string) error
}

type validate struct {
	v *validator.Validate
}

var (
	timeSlotPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)-([01]\d|2[0-3]):([0-5]\d)$`)
	namePattern     = regexp.MustCompile(`^\p{L}[\p{L} .'\-]*$`)
)

var messages = map[string]string{
	"required":   "is required",
	"apptdate":   "must be a date in YYYY-MM-DD form",
	"timeslot":   "must be a time slot like 09:00-10:00",
	"apptstatus": "must be one of AV, AC, WL, PA",
	"gender":     "must be M or F",
	"personname": "must be 1-128 letters",
}

// New builds a validator with the clinic-specific tags registered.
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	custom := map[string]func(string) bool{
		"apptdate":   IsDate,
		"timeslot":   IsTimeSlot,
		"apptstatus": IsStatus,
		"gender":     IsGender,
		"personname": IsName,
	}
	for tag, fn := range custom {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}

	return &validate{v: v}
}

func (v *validate) Validate(obj interface{}) error {
	if err := v.v.Struct(obj); err != nil {
		return translate(err)
	}
	return nil
}

func (v *validate) ValidateField(field string, value interface{}, tag string) error {
	if err := v.v.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			return apperrors.BadRequest(fmt.Sprintf("%s %s", field, message(verrs[0])), nil)
		}
		return apperrors.BadRequest(field+" is invalid", err)
	}
	return nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return apperrors.BadRequest("invalid input", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s %s", fe.Field(), message(fe)))
	}
	return apperrors.BadRequest(strings.Join(parts, "; "), nil)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}

// IsDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperrors.BadRequest("date "+messages["apptdate"], err)
	}
	return t, nil
}

// IsTimeSlot accepts HH:MM-HH:MM with the start strictly before the end.
func IsTimeSlot(s string) bool {
	m := timeSlotPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	start := m[1] + m[2]
	end := m[3] + m[4]
	return start < end
}

func IsStatus(s string) bool {
	switch s {
	case "AV", "AC", "WL", "PA":
		return true
	}
	return false
}

func IsGender(s string) bool {
	return s == "M" || s == "F"
}

func IsName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= 128 && namePattern.MatchString(s)
}
