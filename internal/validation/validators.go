package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxIdeaLength bounds a single wheel label
const MaxIdeaLength = 100

var (
	// Validate is a shared validator instance. Field names in errors are JSON names.
	Validate *validator.Validate
)

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := Validate.RegisterValidation("notblank", validateNotBlank); err != nil {
		panic(fmt.Sprintf("failed to register notblank validator: %v", err))
	}
	if err := Validate.RegisterValidation("idea_label", validateIdeaLabel); err != nil {
		panic(fmt.Sprintf("failed to register idea_label validator: %v", err))
	}
}

// validateNotBlank rejects strings that are empty after trimming
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateIdeaLabel accepts a non-blank label of at most MaxIdeaLength runes
func validateIdeaLabel(fl validator.FieldLevel) bool {
	return ValidateIdea(fl.Field().String()) == nil
}

// ValidateIdea checks a wheel label after sanitizing it
func ValidateIdea(label string) error {
	label = SanitizeText(label)
	if label == "" {
		return errors.New("idea cannot be empty")
	}
	if len([]rune(label)) > MaxIdeaLength {
		return fmt.Errorf("idea cannot be longer than %d characters", MaxIdeaLength)
	}
	return nil
}

// SanitizeText trims whitespace and removes control characters other than newline and tab
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}
	return sanitized.String()
}

// Messages renders validation errors as user-facing strings. custom is keyed by
// "<json field>.<tag>"; anything else gets a generic message.
func Messages(err error, custom map[string]string) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err == nil {
			return nil
		}
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, ok := custom[fe.Field()+"."+fe.Tag()]; ok {
			out = append(out, msg)
			continue
		}
		out = append(out, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
	}
	return out
}
