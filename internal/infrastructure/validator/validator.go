package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// AppValidator implements usecasecontract.IValidator on top of go-playground/validator.
type AppValidator struct {
	validate *validator.Validate
}

var _ usecasecontract.IValidator = (*AppValidator)(nil)

// NewValidator creates an AppValidator with the custom tags registered.
func NewValidator() *AppValidator {
	v := validator.New()
	registerTags(v)
	return &AppValidator{validate: v}
}

// ValidateEmail checks if the email format is valid.
func (av *AppValidator) ValidateEmail(email string) error {
	return av.validate.Var(email, "required,email")
}

// ValidateStruct runs the struct's validate tags.
func (av *AppValidator) ValidateStruct(s interface{}) error {
	return av.validate.Struct(s)
}

// ValidatePasswordStrength checks if the password meets the strength requirements.
func (av *AppValidator) ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if !containsRune(password, unicode.IsUpper) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !containsRune(password, unicode.IsLower) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !containsRune(password, unicode.IsNumber) {
		return fmt.Errorf("password must contain at least one number")
	}
	if !containsRune(password, isSpecial) {
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}

// RegisterCustomValidators registers the custom tags with the Gin binding validator.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerTags(v)
	}
}

func registerTags(v *validator.Validate) {
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

func containsRune(s string, pred func(rune) bool) bool {
	for _, char := range s {
		if pred(char) {
			return true
		}
	}
	return false
}

func isSpecial(r rune) bool {
	return strings.ContainsRune("!@#$%^&*()_+-=[]{};:'\\|,.<>/?", r)
}
