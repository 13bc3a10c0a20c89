package validator

import (
	"errors"
	"regexp"

	validators "github.com/go-playground/validator/v10"
)

// phonePattern is the accepted shape of an inbound phone number
var phonePattern = regexp.MustCompile(`^\d{7,15}$`)

// Validator interface
type Validator interface {
	ValidateStruct(inf interface{}) error
}

type validator struct {
	validator *validators.Validate
}

// New Validator func
func New() Validator {
	v := validators.New()
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("phone", func(fl validators.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &validator{
		validator: v,
	}
}

// ValidateStruct func
func (v *validator) ValidateStruct(inf interface{}) error {

	return v.validator.Struct(inf)
}

// FailedTag returns the tag of the first failed rule, empty if err is not a validation error
func FailedTag(err error) string {
	var verrs validators.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return ""
}
