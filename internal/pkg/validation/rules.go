package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/tutorledger/internal/app/models"
)

// Validation rule patterns
var (
	// UsernamePattern allows letters, digits, dot, dash and underscore
	UsernamePattern = `^[a-zA-Z0-9._-]{3,50}$`

	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 200
)

var usernameRegex = regexp.MustCompile(UsernamePattern)

// Tags of the custom rules
const (
	TagUsername = "username"
	TagMoney    = "money"
)

// ValidUsername checks a login name against UsernamePattern
func ValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// NormalizeUsername trims and lowercases a login name; usernames are case-insensitive
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidMoney reports whether s is blank or a parseable non-negative amount
func ValidMoney(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, err := models.ParseMoney(s)
	return err == nil
}

// RegisterRules installs the custom rules on v
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation(TagUsername, func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register %s rule: %w", TagUsername, err)
	}
	if err := v.RegisterValidation(TagMoney, func(fl validator.FieldLevel) bool {
		return ValidMoney(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register %s rule: %w", TagMoney, err)
	}
	return nil
}

// RegisterGinRules installs the custom rules on gin's binding validator
func RegisterGinRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return RegisterRules(v)
}
