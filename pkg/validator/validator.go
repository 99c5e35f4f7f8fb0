// Package validator provides struct validation utilities with custom validators.
package validator

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ghsaIDRegex validates GitHub advisory IDs: GHSA-xxxx-xxxx-xxxx.
var ghsaIDRegex = regexp.MustCompile(`^GHSA(-[23456789cfghjmpqrvwx]{4}){3}$`)

// fingerprintRegex validates normalized finding fingerprints: 16 hex chars.
var fingerprintRegex = regexp.MustCompile(`^[0-9a-f]{16}$`)

// ecosystems are the package ecosystems the advisory resolver understands.
var ecosystems = map[string]bool{
	"go":       true,
	"pip":      true,
	"pypi":     true,
	"npm":      true,
	"composer": true,
}

// Validator wraps the go-playground validator with custom validations.
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range v {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return sb.String()
}

// New creates a new Validator with custom validators registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("repo_url", validateRepoURL)
	_ = v.RegisterValidation("ghsa_id", validateGhsaID)
	_ = v.RegisterValidation("ecosystem", validateEcosystem)
	_ = v.RegisterValidation("fingerprint", validateFingerprint)

	return &Validator{validate: v}
}

// Validate validates a struct and returns field-level errors.
func (v *Validator) Validate(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if stderrors.As(err, &invalid) {
		return fmt.Errorf("validation setup error: %w", err)
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageFor(fe),
		})
	}
	return errs
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(value any, tag string) error {
	return v.validate.Var(value, tag)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "repo_url":
		return "must be a cloneable repository URL"
	case "ghsa_id":
		return "must be a GHSA identifier"
	case "ecosystem":
		return "is not a supported package ecosystem"
	case "fingerprint":
		return "must be a 16 character hex fingerprint"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// validateRepoURL accepts http(s), git and ssh URLs with a host and path,
// plus file:// URLs used by local smoke tests.
func validateRepoURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	switch u.Scheme {
	case "http", "https", "git", "ssh":
		return u.Host != "" && strings.Trim(u.Path, "/") != ""
	case "file":
		return u.Path != ""
	default:
		return false
	}
}

func validateGhsaID(fl validator.FieldLevel) bool {
	return ghsaIDRegex.MatchString(fl.Field().String())
}

func validateEcosystem(fl validator.FieldLevel) bool {
	return ecosystems[strings.ToLower(fl.Field().String())]
}

func validateFingerprint(fl validator.FieldLevel) bool {
	return fingerprintRegex.MatchString(fl.Field().String())
}
