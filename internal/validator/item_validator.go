package validator

import (
	"fmt"

	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/scoring"
)

// ItemValidator handles bank-item content validation
type ItemValidator struct{}

// NewItemValidator creates a new item content validator
func NewItemValidator() *ItemValidator {
	return &ItemValidator{}
}

// ValidateItem validates a complete bank item record, including the
// type-specific content payload
func (v *ItemValidator) ValidateItem(record *models.BankItem) error {
	if record.Stem == "" {
		return fmt.Errorf("item stem is required")
	}
	if record.CaseID == "" {
		return fmt.Errorf("item case_id is required")
	}

	item, err := scoring.ParseItem(record)
	if err != nil {
		return err
	}
	return v.validateParsed(item)
}

// ValidateBatch validates multiple bank items
func (v *ItemValidator) ValidateBatch(records []*models.BankItem) error {
	if len(records) == 0 {
		return fmt.Errorf("item batch cannot be empty")
	}

	for i, record := range records {
		if err := v.ValidateItem(record); err != nil {
			return fmt.Errorf("validation failed for item %d: %w", i+1, err)
		}
	}

	return nil
}

func (v *ItemValidator) validateParsed(item scoring.Item) error {
	switch parsed := item.(type) {
	case scoring.SingleBest:
		return v.validateSingleBest(parsed)
	case scoring.MultiSelect:
		return v.validateMultiSelect(parsed)
	case scoring.Ordered:
		return v.validateOrdered(parsed)
	case scoring.Cloze:
		return v.validateCloze(parsed)
	case scoring.Matrix:
		return v.validateMatrix(parsed)
	case scoring.EvolvingCase:
		return v.validateEvolvingCase(parsed)
	default:
		return fmt.Errorf("unsupported item type: %s", item.Type())
	}
}

func (v *ItemValidator) validateSingleBest(item scoring.SingleBest) error {
	if len(item.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(item.Options) > 10 {
		return fmt.Errorf("cannot have more than 10 options")
	}
	if item.Correct == "" {
		return fmt.Errorf("must have a correct answer")
	}
	if !containsOption(item.Options, item.Correct) {
		return fmt.Errorf("correct answer %q does not match any option", item.Correct)
	}
	return nil
}

func (v *ItemValidator) validateMultiSelect(item scoring.MultiSelect) error {
	if len(item.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(item.Options) > 10 {
		return fmt.Errorf("cannot have more than 10 options")
	}
	if len(item.Correct) == 0 {
		return fmt.Errorf("must have at least 1 correct answer")
	}
	for _, correct := range item.Correct {
		if !containsOption(item.Options, correct) {
			return fmt.Errorf("correct answer %q does not match any option", correct)
		}
	}
	return nil
}

func (v *ItemValidator) validateOrdered(item scoring.Ordered) error {
	if len(item.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(item.Correct) != len(item.Options) {
		return fmt.Errorf("correct order must include all options exactly once")
	}

	seen := make(map[string]bool)
	for _, step := range item.Correct {
		if !containsOption(item.Options, step) {
			return fmt.Errorf("correct order references non-existent option: %s", step)
		}
		if seen[step] {
			return fmt.Errorf("correct order contains duplicate option: %s", step)
		}
		seen[step] = true
	}
	return nil
}

func (v *ItemValidator) validateCloze(item scoring.Cloze) error {
	if item.CorrectText == "" {
		return fmt.Errorf("correct_text is required")
	}
	for i, synonym := range item.Acceptable {
		if synonym == "" {
			return fmt.Errorf("acceptable answer %d cannot be empty", i+1)
		}
	}
	return nil
}

func (v *ItemValidator) validateMatrix(item scoring.Matrix) error {
	if len(item.Rows) < 2 {
		return fmt.Errorf("must have at least 2 rows")
	}
	if len(item.Cols) < 2 {
		return fmt.Errorf("must have at least 2 columns")
	}

	for _, row := range item.Rows {
		col, ok := item.Correct[row]
		if !ok {
			return fmt.Errorf("row %q has no correct column", row)
		}
		if !containsOption(item.Cols, col) {
			return fmt.Errorf("row %q maps to non-existent column: %s", row, col)
		}
	}
	return nil
}

func (v *ItemValidator) validateEvolvingCase(item scoring.EvolvingCase) error {
	if len(item.Stages) < 2 {
		return fmt.Errorf("must have at least 2 stages")
	}

	labels := make(map[string]bool)
	for i, stage := range item.Stages {
		if stage.Label == "" {
			return fmt.Errorf("stage %d must have a label", i+1)
		}
		if labels[stage.Label] {
			return fmt.Errorf("duplicate stage label: %s", stage.Label)
		}
		labels[stage.Label] = true

		question := stage.Question
		if question.Stem == "" {
			return fmt.Errorf("stage %q question must have a stem", stage.Label)
		}
		switch question.Type {
		case models.ItemMCQ:
			if question.CorrectOne == "" {
				return fmt.Errorf("stage %q question must have a correct answer", stage.Label)
			}
			if !containsOption(question.Options, question.CorrectOne) {
				return fmt.Errorf("stage %q correct answer does not match any option", stage.Label)
			}
		case models.ItemSATA:
			if len(question.CorrectMany) == 0 {
				return fmt.Errorf("stage %q question must have at least 1 correct answer", stage.Label)
			}
			for _, correct := range question.CorrectMany {
				if !containsOption(question.Options, correct) {
					return fmt.Errorf("stage %q correct answer %q does not match any option", stage.Label, correct)
				}
			}
		default:
			return fmt.Errorf("stage %q has unsupported question type: %s", stage.Label, question.Type)
		}
	}
	return nil
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
