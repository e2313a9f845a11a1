package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// "timeofday" validates HH:MM wall-clock strings used for
	// availability windows.
	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		return timeOfDayRe.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates a struct against its `validate` tags.
func Struct(s interface{}) error {
	return validate.Struct(s)
}
