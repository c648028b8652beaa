package render

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9]{6,20}$`)
	passwordRe = regexp.MustCompile(`^[A-Za-z0-9~!@#$%^&*()+|=]{8,20}$`)
	mobileRe   = regexp.MustCompile(`^01[016-9]-[0-9]{3,4}-[0-9]{4}$`)
)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("username", validateUsername)
	_ = validate.RegisterValidation("userpassword", validatePassword)
	_ = validate.RegisterValidation("mobile", validateMobile)
	_ = validate.RegisterValidation("pastdate", validatePastDate)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// 6-20 chars, letters and digits only, at least one of each
// RE2 has no lookahead so the "contains" checks live outside the regexp
func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()
	return usernameRe.MatchString(username) &&
		strings.ContainsAny(username, letters) &&
		strings.ContainsAny(username, digits)
}

// 8-20 chars of letters, digits and symbols, at least one of each kind
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	return passwordRe.MatchString(password) &&
		strings.ContainsAny(password, letters) &&
		strings.ContainsAny(password, digits) &&
		strings.ContainsAny(password, symbols)
}

// National mobile number format, e.g. 010-1234-5678
func validateMobile(fl validator.FieldLevel) bool {
	return mobileRe.MatchString(fl.Field().String())
}

// Date in 2006-01-02 format strictly in the past
// Compared at date granularity, so today is rejected for the whole day
func validatePastDate(fl validator.FieldLevel) bool {
	date, err := time.Parse(time.DateOnly, fl.Field().String())
	if err != nil {
		return false
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return date.Before(today)
}

const (
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
	symbols = "~!@#$%^&*()+|="
)
