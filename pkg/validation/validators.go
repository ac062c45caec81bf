package validation

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the project's custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("not_blank", NotBlank)
	_ = v.RegisterValidation("locale", ValidLocale)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// NotBlank rejects strings made only of whitespace.
// Pointers are dereferenced by the validator before this runs.
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidLocale accepts the document locales, or empty for the default.
func ValidLocale(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "fr", "en":
		return true
	}
	return false
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		// Supplementary planes are mostly emoji/symbols
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}
