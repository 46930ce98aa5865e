package models

import (
	"time"

	"gorm.io/datatypes"
)

// ItemType identifies one of the six structurally different assessment item
// formats in the bank.
type ItemType string

const (
	ItemMCQ             ItemType = "mcq"
	ItemSATA            ItemType = "sata"
	ItemOrderedResponse ItemType = "ordered_response"
	ItemCloze           ItemType = "cloze"
	ItemMatrix          ItemType = "matrix"
	ItemEvolvingCase    ItemType = "evolving_case"
)

// AllItemTypes returns the supported item types in authoring cycle order.
func AllItemTypes() []ItemType {
	return []ItemType{
		ItemMCQ,
		ItemSATA,
		ItemOrderedResponse,
		ItemCloze,
		ItemMatrix,
		ItemEvolvingCase,
	}
}

// ClientNeed is the NCLEX client-need category an item is tagged with.
type ClientNeed string

const (
	NeedPhysiologicalIntegrity ClientNeed = "Physiological Integrity"
	NeedSafeEffectiveCare      ClientNeed = "Safe and Effective Care Environment"
	NeedHealthPromotion        ClientNeed = "Health Promotion and Maintenance"
	NeedPsychosocialIntegrity  ClientNeed = "Psychosocial Integrity"
)

// BankItem is an immutable ItemBank entry. Content carries the type-specific
// answer key and presentation data:
//
//	mcq:              {options, correct}
//	sata:             {options, correct: []}
//	ordered_response: {options, correct: []}
//	cloze:            {correct_text, acceptable: []}
//	matrix:           {rows, cols, correct: {row: col}}
//	evolving_case:    {stages: [{stage, update, question}]}
type BankItem struct {
	ID         string     `json:"id" gorm:"primaryKey;size:64"`
	CaseID     string     `json:"case_id" gorm:"not null;size:64;index" validate:"required"`
	Type       ItemType   `json:"type" gorm:"not null;size:32" validate:"required,item_type"`
	Stem       string     `json:"stem" gorm:"not null;type:text" validate:"required"`
	ClientNeed ClientNeed `json:"client_need" gorm:"size:64"`

	Content   datatypes.JSON `json:"content" gorm:"type:jsonb;not null"`
	Rationale *string        `json:"rationale,omitempty" gorm:"type:text"`
	Tags      datatypes.JSON `json:"tags,omitempty" gorm:"type:jsonb"` // []string

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BankItem) TableName() string {
	return "bank_items"
}
