package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalpath/scoring-service/internal/models"
)

func bankItem(itemType models.ItemType, content string) *models.BankItem {
	return &models.BankItem{
		ID:      "item-1",
		CaseID:  "case-1",
		Type:    itemType,
		Stem:    "What should the nurse do first?",
		Content: []byte(content),
	}
}

func TestValidateItemRecordFields(t *testing.T) {
	v := NewItemValidator()

	t.Run("MissingStem", func(t *testing.T) {
		record := bankItem(models.ItemMCQ, `{"options":["A","B"],"correct":"A"}`)
		record.Stem = ""

		assert.ErrorContains(t, v.ValidateItem(record), "stem is required")
	})

	t.Run("MissingCaseID", func(t *testing.T) {
		record := bankItem(models.ItemMCQ, `{"options":["A","B"],"correct":"A"}`)
		record.CaseID = ""

		assert.ErrorContains(t, v.ValidateItem(record), "case_id is required")
	})

	t.Run("UnknownType", func(t *testing.T) {
		assert.Error(t, v.ValidateItem(bankItem("hotspot", `{}`)))
	})
}

func TestValidateSingleBest(t *testing.T) {
	v := NewItemValidator()

	t.Run("Valid", func(t *testing.T) {
		record := bankItem(models.ItemMCQ, `{"options":["Furosemide","Morphine"],"correct":"Furosemide"}`)

		assert.NoError(t, v.ValidateItem(record))
	})

	t.Run("TooFewOptions", func(t *testing.T) {
		record := bankItem(models.ItemMCQ, `{"options":["Furosemide"],"correct":"Furosemide"}`)

		assert.ErrorContains(t, v.ValidateItem(record), "at least 2 options")
	})

	t.Run("CorrectNotAnOption", func(t *testing.T) {
		record := bankItem(models.ItemMCQ, `{"options":["Furosemide","Morphine"],"correct":"Metoprolol"}`)

		assert.ErrorContains(t, v.ValidateItem(record), "does not match any option")
	})
}

func TestValidateMultiSelect(t *testing.T) {
	v := NewItemValidator()

	t.Run("Valid", func(t *testing.T) {
		record := bankItem(models.ItemSATA, `{"options":["Crackles","Edema","Fever"],"correct":["Crackles","Edema"]}`)

		assert.NoError(t, v.ValidateItem(record))
	})

	t.Run("NoCorrectAnswers", func(t *testing.T) {
		record := bankItem(models.ItemSATA, `{"options":["Crackles","Edema"],"correct":[]}`)

		assert.ErrorContains(t, v.ValidateItem(record), "at least 1 correct answer")
	})

	t.Run("CorrectNotAnOption", func(t *testing.T) {
		record := bankItem(models.ItemSATA, `{"options":["Crackles","Edema"],"correct":["Fever"]}`)

		assert.ErrorContains(t, v.ValidateItem(record), "does not match any option")
	})
}

func TestValidateOrdered(t *testing.T) {
	v := NewItemValidator()

	t.Run("Valid", func(t *testing.T) {
		record := bankItem(models.ItemOrderedResponse, `{"options":["X","Y","Z"],"correct":["Z","X","Y"]}`)

		assert.NoError(t, v.ValidateItem(record))
	})

	t.Run("IncompleteOrder", func(t *testing.T) {
		record := bankItem(models.ItemOrderedResponse, `{"options":["X","Y","Z"],"correct":["X","Y"]}`)

		assert.ErrorContains(t, v.ValidateItem(record), "all options exactly once")
	})

	t.Run("DuplicateStep", func(t *testing.T) {
		record := bankItem(models.ItemOrderedResponse, `{"options":["X","Y","Z"],"correct":["X","X","Y"]}`)

		assert.ErrorContains(t, v.ValidateItem(record), "duplicate option")
	})
}

func TestValidateCloze(t *testing.T) {
	v := NewItemValidator()

	t.Run("Valid", func(t *testing.T) {
		record := bankItem(models.ItemCloze, `{"correct_text":"orthostatic hypotension","acceptable":["postural hypotension"]}`)

		assert.NoError(t, v.ValidateItem(record))
	})

	t.Run("MissingCorrectText", func(t *testing.T) {
		record := bankItem(models.ItemCloze, `{"acceptable":["postural hypotension"]}`)

		assert.ErrorContains(t, v.ValidateItem(record), "correct_text is required")
	})

	t.Run("EmptySynonym", func(t *testing.T) {
		record := bankItem(models.ItemCloze, `{"correct_text":"orthostatic hypotension","acceptable":[""]}`)

		assert.ErrorContains(t, v.ValidateItem(record), "cannot be empty")
	})
}

func TestValidateMatrix(t *testing.T) {
	v := NewItemValidator()

	t.Run("Valid", func(t *testing.T) {
		record := bankItem(models.ItemMatrix, `{"rows":["Crackles","Fever"],"cols":["Expected","Concerning"],"correct":{"Crackles":"Concerning","Fever":"Expected"}}`)

		assert.NoError(t, v.ValidateItem(record))
	})

	t.Run("RowWithoutKey", func(t *testing.T) {
		record := bankItem(models.ItemMatrix, `{"rows":["Crackles","Fever"],"cols":["Expected","Concerning"],"correct":{"Crackles":"Concerning"}}`)

		assert.ErrorContains(t, v.ValidateItem(record), "has no correct column")
	})

	t.Run("RowMapsToUnknownColumn", func(t *testing.T) {
		record := bankItem(models.ItemMatrix, `{"rows":["Crackles","Fever"],"cols":["Expected","Concerning"],"correct":{"Crackles":"Concerning","Fever":"Unsure"}}`)

		assert.ErrorContains(t, v.ValidateItem(record), "non-existent column")
	})
}

func TestValidateEvolvingCase(t *testing.T) {
	v := NewItemValidator()

	valid := `{"stages":[
		{"stage":"arrival","update":"...","question":{"type":"mcq","stem":"First action?","options":["Apply oxygen","Draw labs"],"correct":"Apply oxygen"}},
		{"stage":"deterioration","update":"...","question":{"type":"sata","stem":"Next actions?","options":["Call rapid response","Document"],"correct":["Call rapid response"]}}
	]}`

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, v.ValidateItem(bankItem(models.ItemEvolvingCase, valid)))
	})

	t.Run("SingleStageRejected", func(t *testing.T) {
		content := `{"stages":[{"stage":"arrival","question":{"type":"mcq","stem":"?","options":["A","B"],"correct":"A"}}]}`

		assert.ErrorContains(t, v.ValidateItem(bankItem(models.ItemEvolvingCase, content)), "at least 2 stages")
	})

	t.Run("DuplicateStageLabels", func(t *testing.T) {
		content := `{"stages":[
			{"stage":"arrival","question":{"type":"mcq","stem":"?","options":["A","B"],"correct":"A"}},
			{"stage":"arrival","question":{"type":"mcq","stem":"?","options":["A","B"],"correct":"B"}}
		]}`

		assert.ErrorContains(t, v.ValidateItem(bankItem(models.ItemEvolvingCase, content)), "duplicate stage label")
	})
}

func TestValidateBatch(t *testing.T) {
	v := NewItemValidator()

	t.Run("EmptyBatchRejected", func(t *testing.T) {
		assert.ErrorContains(t, v.ValidateBatch(nil), "cannot be empty")
	})

	t.Run("ReportsFailingPosition", func(t *testing.T) {
		records := []*models.BankItem{
			bankItem(models.ItemMCQ, `{"options":["A","B"],"correct":"A"}`),
			bankItem(models.ItemMCQ, `{"options":["A"],"correct":"A"}`),
		}

		assert.ErrorContains(t, v.ValidateBatch(records), "item 2")
	})
}

func TestStructValidation(t *testing.T) {
	v := New()

	t.Run("ValidRecordPasses", func(t *testing.T) {
		record := bankItem(models.ItemMCQ, `{"options":["A","B"],"correct":"A"}`)

		assert.NoError(t, v.Validate(record))
	})

	t.Run("UnknownItemTypeFlagged", func(t *testing.T) {
		record := bankItem("hotspot", `{}`)

		err := v.Validate(record)
		assert.Error(t, err)
	})
}
