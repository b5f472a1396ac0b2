// Package validation checks input structs with go-playground/validator
// before anything is written.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ncobase/feedsync/ecode"
)

// DateLayout is the accepted date of birth format.
const DateLayout = "2006-01-02"

var (
	validate *validator.Validate
	now      = time.Now
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := validate.RegisterValidation("minage", minAge); err != nil {
		panic(err)
	}
}

// Age returns full years between dob and at.
func Age(dob, at time.Time) int {
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	return years
}

// minAge checks a DateLayout string field is at least param years ago.
func minAge(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	dob, err := time.Parse(DateLayout, strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return Age(dob, now()) >= limit
}

// fieldMessages overrides messages for specific field and tag pairs.
var fieldMessages = map[string]string{
	"name.required":           "Name must be at least 6 characters.",
	"name.min":                "Name must be at least 6 characters.",
	"username.required":       "Username is required.",
	"email.required":          "Invalid email format.",
	"email.email":             "Invalid email format.",
	"dob.required":            "Date of birth is required.",
	"dob.minage":              "You must be at least 16 years old.",
	"password.required":       "Password is required.",
	"confirmPassword.eqfield": "Passwords do not match.",
	"content.required":        "Post content cannot be empty.",
	"imageUrl.url":            "Image URL must be a valid URL.",
}

// tagMessages maps validation tags to generic messages.
var tagMessages = map[string]string{
	"required": "The field '%s' is required.",
	"email":    "The field '%s' must be a valid email address.",
	"min":      "The field '%s' must be at least %s characters long.",
	"max":      "The field '%s' must be no longer than %s characters.",
	"eqfield":  "The field '%s' must match %s.",
	"minage":   "The field '%s' requires an age of at least %s.",
	"url":      "The field '%s' must be a valid URL.",
}

// parseMessage constructs a friendly error message based on the validation tag and custom messages.
func parseMessage(field string, e validator.FieldError) string {
	if msg, ok := fieldMessages[field+"."+e.Tag()]; ok {
		return msg
	}
	if msg, ok := tagMessages[e.Tag()]; ok {
		switch strings.Count(msg, "%s") {
		case 1:
			return fmt.Sprintf(msg, field)
		case 2:
			return fmt.Sprintf(msg, field, e.Param())
		}
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", field, e.Tag())
}

// ValidateStruct validates a struct and returns a map of JSON field names to friendly error messages.
func ValidateStruct(s any) map[string]string {
	validationErrors := make(map[string]string)

	err := validate.Struct(s)
	if err == nil {
		return validationErrors
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		validationErrors["_"] = err.Error()
		return validationErrors
	}
	for _, e := range validationErrs {
		if _, seen := validationErrors[e.Field()]; seen {
			continue
		}
		validationErrors[e.Field()] = parseMessage(e.Field(), e)
	}
	return validationErrors
}

// Validate returns an ecode validation error carrying the field messages,
// or nil.
func Validate(s any) error {
	if fields := ValidateStruct(s); len(fields) > 0 {
		return ecode.ValidationError(fields)
	}
	return nil
}
