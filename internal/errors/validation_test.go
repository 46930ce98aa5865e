package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("case_id", "is required", "")

	if err.Field != "case_id" {
		t.Errorf("Expected field to be 'case_id', got '%s'", err.Field)
	}

	if err.Message != "is required" {
		t.Errorf("Expected message to be 'is required', got '%s'", err.Message)
	}

	expected := "validation error on field 'case_id': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("type", "must be a valid item type (mcq, sata, ordered_response, cloze, matrix, evolving_case)", nil))
	if errs.Error() == "validation failed" {
		t.Errorf("Expected single-error message, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("stem", "is required", nil))
	expected := "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("domain", "must be a valid clinical domain (assessment, prioritize, intervention, reassess, sbar)", "clinical_domain", "triage")

	if err.Rule != "clinical_domain" {
		t.Errorf("Expected rule to be 'clinical_domain', got '%s'", err.Rule)
	}

	if err.Value != "triage" {
		t.Errorf("Expected value to be 'triage', got '%v'", err.Value)
	}
}
