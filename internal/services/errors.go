package services

import (
	"errors"
	"fmt"

	apperrors "github.com/vitalpath/scoring-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Case specific errors
	ErrCaseNotFound   = errors.New("clinical case not found")
	ErrCaseEmptyBank  = errors.New("clinical case has no bank items")
	ErrUnknownDomain  = errors.New("unknown clinical domain")
	ErrItemNotFound   = errors.New("bank item not found")
	ErrItemNotInScope = errors.New("bank item is not part of this attempt's presented set")

	// Attempt specific errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptNotActive        = errors.New("attempt is not active")
	ErrAttemptAlreadyFinalized = errors.New("attempt already finalized")
	ErrAttemptAccessDenied     = errors.New("access denied to attempt")

	// Rotation specific errors
	ErrActiveSetNotFound = errors.New("no active item set generated for this case")

	// Psychometrics specific errors
	ErrAnalysisNoAttempts = errors.New("no finalized attempts available for analysis")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCaseNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrActiveSetNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAttemptAlreadyFinalized) ||
		errors.Is(err, ErrAttemptNotActive)
}
