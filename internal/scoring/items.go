package scoring

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/vitalpath/scoring-service/internal/models"
)

// Item is the tagged union over the six bank item formats. Each variant
// carries its own answer-key shape and is scored by its own function, so an
// unhandled format is a compile-time concern rather than a string-compare
// fallthrough.
type Item interface {
	ID() string
	Type() models.ItemType
}

type SingleBest struct {
	ItemID  string   `json:"id"`
	Options []string `json:"options"`
	Correct string   `json:"correct"`
}

type MultiSelect struct {
	ItemID  string   `json:"id"`
	Options []string `json:"options"`
	Correct []string `json:"correct"`
}

type Ordered struct {
	ItemID  string   `json:"id"`
	Options []string `json:"options"`
	Correct []string `json:"correct"`
}

type Cloze struct {
	ItemID      string   `json:"id"`
	CorrectText string   `json:"correct_text"`
	Acceptable  []string `json:"acceptable"`
}

type Matrix struct {
	ItemID  string            `json:"id"`
	Rows    []string          `json:"rows"`
	Cols    []string          `json:"cols"`
	Correct map[string]string `json:"correct"`
}

type EvolvingCase struct {
	ItemID string  `json:"id"`
	Stages []Stage `json:"stages"`
}

// Stage is one step of an evolving case: a scenario update plus an embedded
// single-best or multi-select sub-question.
type Stage struct {
	Label    string        `json:"stage"`
	Update   string        `json:"update"`
	Question StageQuestion `json:"question"`
}

type StageQuestion struct {
	Type        models.ItemType `json:"type"`
	Stem        string          `json:"stem"`
	Options     []string        `json:"options"`
	CorrectOne  string          `json:"-"`
	CorrectMany []string        `json:"-"`
}

func (i SingleBest) ID() string              { return i.ItemID }
func (i SingleBest) Type() models.ItemType   { return models.ItemMCQ }
func (i MultiSelect) ID() string             { return i.ItemID }
func (i MultiSelect) Type() models.ItemType  { return models.ItemSATA }
func (i Ordered) ID() string                 { return i.ItemID }
func (i Ordered) Type() models.ItemType      { return models.ItemOrderedResponse }
func (i Cloze) ID() string                   { return i.ItemID }
func (i Cloze) Type() models.ItemType        { return models.ItemCloze }
func (i Matrix) ID() string                  { return i.ItemID }
func (i Matrix) Type() models.ItemType       { return models.ItemMatrix }
func (i EvolvingCase) ID() string            { return i.ItemID }
func (i EvolvingCase) Type() models.ItemType { return models.ItemEvolvingCase }

// UnmarshalJSON accepts the authored content shape, where "correct" is a
// string for mcq sub-questions and a list for sata sub-questions.
func (q *StageQuestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    models.ItemType `json:"type"`
		Stem    string          `json:"stem"`
		Options []string        `json:"options"`
		Correct json.RawMessage `json:"correct"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Type = raw.Type
	q.Stem = raw.Stem
	q.Options = raw.Options

	switch raw.Type {
	case models.ItemMCQ:
		return json.Unmarshal(raw.Correct, &q.CorrectOne)
	case models.ItemSATA:
		return json.Unmarshal(raw.Correct, &q.CorrectMany)
	default:
		return fmt.Errorf("unsupported stage question type %q", raw.Type)
	}
}

// ParseItem decodes a bank record's JSON content into its typed variant.
func ParseItem(record *models.BankItem) (Item, error) {
	switch record.Type {
	case models.ItemMCQ:
		item := SingleBest{ItemID: record.ID}
		if err := json.Unmarshal(record.Content, &item); err != nil {
			return nil, fmt.Errorf("item %s: %w", record.ID, err)
		}
		item.ItemID = record.ID
		return item, nil
	case models.ItemSATA:
		item := MultiSelect{ItemID: record.ID}
		if err := json.Unmarshal(record.Content, &item); err != nil {
			return nil, fmt.Errorf("item %s: %w", record.ID, err)
		}
		item.ItemID = record.ID
		return item, nil
	case models.ItemOrderedResponse:
		item := Ordered{ItemID: record.ID}
		if err := json.Unmarshal(record.Content, &item); err != nil {
			return nil, fmt.Errorf("item %s: %w", record.ID, err)
		}
		item.ItemID = record.ID
		return item, nil
	case models.ItemCloze:
		item := Cloze{ItemID: record.ID}
		if err := json.Unmarshal(record.Content, &item); err != nil {
			return nil, fmt.Errorf("item %s: %w", record.ID, err)
		}
		item.ItemID = record.ID
		return item, nil
	case models.ItemMatrix:
		item := Matrix{ItemID: record.ID}
		if err := json.Unmarshal(record.Content, &item); err != nil {
			return nil, fmt.Errorf("item %s: %w", record.ID, err)
		}
		item.ItemID = record.ID
		return item, nil
	case models.ItemEvolvingCase:
		item := EvolvingCase{ItemID: record.ID}
		if err := json.Unmarshal(record.Content, &item); err != nil {
			return nil, fmt.Errorf("item %s: %w", record.ID, err)
		}
		item.ItemID = record.ID
		return item, nil
	default:
		return nil, fmt.Errorf("item %s: unknown type %q", record.ID, record.Type)
	}
}

// ScoreItem grades one item against a raw student answer. The answer shape
// depends on the item type; absence or a wrong shape is treated as incorrect,
// never as an error, so grading always yields a well-formed ScoreDetail.
func ScoreItem(item Item, answer json.RawMessage, partialCredit bool) models.ScoreDetail {
	switch v := item.(type) {
	case SingleBest:
		return scoreSingleBest(v, answer)
	case MultiSelect:
		return scoreMultiSelect(v, answer)
	case Ordered:
		return scoreOrdered(v, answer, partialCredit)
	case Cloze:
		return scoreCloze(v, answer)
	case Matrix:
		return scoreMatrix(v, answer, partialCredit)
	case EvolvingCase:
		return scoreEvolvingCase(v, answer, partialCredit)
	default:
		return models.ScoreDetail{Max: 1}
	}
}

func scoreSingleBest(item SingleBest, answer json.RawMessage) models.ScoreDetail {
	detail := models.ScoreDetail{Max: 1}
	choice, ok := decodeString(answer)
	if !ok {
		return detail
	}
	if normalizeChoice(choice) == normalizeChoice(item.Correct) {
		detail.Points = 1
		detail.Correct = true
	}
	return detail
}

// scoreMultiSelect is intentionally all-or-nothing: full credit only when the
// selected set matches the key exactly with no extras. Partial SATA credit is
// withheld pending a policy decision (DESIGN.md).
func scoreMultiSelect(item MultiSelect, answer json.RawMessage) models.ScoreDetail {
	detail := models.ScoreDetail{Max: 1}
	selected, ok := decodeStringSlice(answer)
	if !ok {
		detail.MissedSelections = append(detail.MissedSelections, item.Correct...)
		return detail
	}

	correct, wrong, missed := SelectionDiff(selected, item.Correct)
	detail.CorrectSelections = correct
	detail.WrongSelections = wrong
	detail.MissedSelections = missed
	if len(wrong) == 0 && len(missed) == 0 && len(correct) == len(item.Correct) {
		detail.Points = 1
		detail.Correct = true
	}
	return detail
}

func scoreOrdered(item Ordered, answer json.RawMessage, partialCredit bool) models.ScoreDetail {
	sequence, ok := decodeStringSlice(answer)

	matches := 0
	for i, expected := range item.Correct {
		if ok && i < len(sequence) && normalizeChoice(sequence[i]) == normalizeChoice(expected) {
			matches++
		}
	}
	exact := ok && matches == len(item.Correct) && len(sequence) == len(item.Correct)

	if !partialCredit {
		detail := models.ScoreDetail{Max: 1, Correct: exact}
		if exact {
			detail.Points = 1
		}
		return detail
	}
	// Strict positional comparison; no alignment or edit-distance credit.
	return models.ScoreDetail{
		Points:  matches,
		Max:     len(item.Correct),
		Correct: exact,
	}
}

func scoreCloze(item Cloze, answer json.RawMessage) models.ScoreDetail {
	detail := models.ScoreDetail{Max: 1}
	text, ok := decodeString(answer)
	if !ok {
		return detail
	}

	normalized := normalizeFreeText(text)
	if normalized == "" {
		return detail
	}
	if normalized == normalizeFreeText(item.CorrectText) {
		detail.Points = 1
		detail.Correct = true
		return detail
	}
	for _, synonym := range item.Acceptable {
		if normalized == normalizeFreeText(synonym) {
			detail.Points = 1
			detail.Correct = true
			return detail
		}
	}
	return detail
}

func scoreMatrix(item Matrix, answer json.RawMessage, partialCredit bool) models.ScoreDetail {
	selections, ok := decodeStringMap(answer)

	matches := 0
	for _, row := range item.Rows {
		expected := item.Correct[row]
		if ok && normalizeChoice(selections[row]) == normalizeChoice(expected) && expected != "" {
			matches++
		}
	}
	exact := matches == len(item.Rows)

	if !partialCredit {
		detail := models.ScoreDetail{Max: 1, Correct: exact}
		if exact {
			detail.Points = 1
		}
		return detail
	}
	return models.ScoreDetail{
		Points:  matches,
		Max:     len(item.Rows),
		Correct: exact,
	}
}

func scoreEvolvingCase(item EvolvingCase, answer json.RawMessage, partialCredit bool) models.ScoreDetail {
	stageAnswers, _ := decodeRawMap(answer)

	matched := 0
	for _, stage := range item.Stages {
		if stageCorrect(stage.Question, stageAnswers[stage.Label]) {
			matched++
		}
	}
	exact := matched == len(item.Stages)

	if !partialCredit {
		detail := models.ScoreDetail{Max: 1, Correct: exact}
		if exact {
			detail.Points = 1
		}
		return detail
	}
	// Each stage contributes one point to both sides of the ratio.
	return models.ScoreDetail{
		Points:  matched,
		Max:     len(item.Stages),
		Correct: exact,
	}
}

// stageCorrect applies the same equivalence rules as the standalone
// single-best and multi-select scorers to an embedded stage question.
func stageCorrect(question StageQuestion, answer json.RawMessage) bool {
	switch question.Type {
	case models.ItemMCQ:
		choice, ok := decodeString(answer)
		return ok && normalizeChoice(choice) == normalizeChoice(question.CorrectOne)
	case models.ItemSATA:
		selected, ok := decodeStringSlice(answer)
		if !ok {
			return false
		}
		correct, wrong, missed := SelectionDiff(selected, question.CorrectMany)
		return len(wrong) == 0 && len(missed) == 0 && len(correct) == len(question.CorrectMany)
	default:
		return false
	}
}

var punctuationPattern = regexp.MustCompile(`[^\pL\pN\s]+`)

// normalizeFreeText lower-cases, strips punctuation, and collapses whitespace
// for cloze comparison.
func normalizeFreeText(s string) string {
	s = punctuationPattern.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

// ===== LENIENT ANSWER DECODING =====

func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeStringSlice(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	return values, true
}

func decodeStringMap(raw json.RawMessage) (map[string]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	values := make(map[string]string)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	return values, true
}

func decodeRawMap(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	return values, true
}
