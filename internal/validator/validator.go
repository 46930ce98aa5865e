package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vitalpath/scoring-service/internal/models"
)

// Validator is the main validator instance that combines struct-tag and
// item-content validation
type Validator struct {
	structValidator *validator.Validate
	itemValidator   *ItemValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		itemValidator:   NewItemValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs complete validation and reports field errors in the
// shared ValidationErrors shape
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errors := ToValidationErrors(err); len(errors) > 0 {
			return errors
		}
		return err
	}
	return nil
}

// Item returns the item content validator
func (v *Validator) Item() *ItemValidator {
	return v.itemValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("item_type", validateItemType)
	validate.RegisterValidation("clinical_domain", validateClinicalDomain)
	validate.RegisterValidation("client_need", validateClientNeed)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateItemType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validType := range models.AllItemTypes() {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateClinicalDomain(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validDomain := range models.AllDomains() {
		if string(validDomain) == value {
			return true
		}
	}
	return false
}

func validateClientNeed(fl validator.FieldLevel) bool {
	validNeeds := []models.ClientNeed{
		models.NeedPhysiologicalIntegrity,
		models.NeedSafeEffectiveCare,
		models.NeedHealthPromotion,
		models.NeedPsychosocialIntegrity,
	}

	value := fl.Field().String()
	for _, validNeed := range validNeeds {
		if string(validNeed) == value {
			return true
		}
	}
	return false
}
