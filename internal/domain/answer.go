package domain

import (
	"encoding/json"
	"math"
	"strings"
)

// Each item type has its own answer shape. The submitted answer is validated
// against the type before it is scored; a shape mismatch is a ValidationError,
// not an incorrect answer.

type multipleChoiceAnswer struct {
	ChoiceID string `json:"choice_id"`
}

type trueFalseAnswer struct {
	Value *bool `json:"value"`
}

type numericAnswer struct {
	Value     *float64 `json:"value"`
	Tolerance float64  `json:"tolerance,omitempty"`
}

// ScoreAnswer validates the raw answer payload against the item's type and
// returns correctness.
func ScoreAnswer(item *PoolItem, raw json.RawMessage) (bool, error) {
	if item == nil {
		return false, NewValidationError("item", "missing item")
	}
	if len(raw) == 0 {
		return false, NewValidationError("answer", "empty answer payload")
	}
	switch item.ItemType {
	case ItemTypeMultipleChoice:
		return scoreMultipleChoice(item, raw)
	case ItemTypeTrueFalse:
		return scoreTrueFalse(item, raw)
	case ItemTypeNumeric:
		return scoreNumeric(item, raw)
	default:
		return false, NewValidationError("item_type", "unknown item type %q", item.ItemType)
	}
}

func scoreMultipleChoice(item *PoolItem, raw json.RawMessage) (bool, error) {
	var got multipleChoiceAnswer
	if err := json.Unmarshal(raw, &got); err != nil || strings.TrimSpace(got.ChoiceID) == "" {
		return false, NewValidationError("answer", "multiple_choice answer requires choice_id")
	}
	var want multipleChoiceAnswer
	if err := json.Unmarshal(item.CorrectAnswer, &want); err != nil {
		return false, NewValidationError("correct_answer", "item %s has malformed key", item.ID)
	}
	return strings.EqualFold(strings.TrimSpace(got.ChoiceID), strings.TrimSpace(want.ChoiceID)), nil
}

func scoreTrueFalse(item *PoolItem, raw json.RawMessage) (bool, error) {
	var got trueFalseAnswer
	if err := json.Unmarshal(raw, &got); err != nil || got.Value == nil {
		return false, NewValidationError("answer", "true_false answer requires boolean value")
	}
	var want trueFalseAnswer
	if err := json.Unmarshal(item.CorrectAnswer, &want); err != nil || want.Value == nil {
		return false, NewValidationError("correct_answer", "item %s has malformed key", item.ID)
	}
	return *got.Value == *want.Value, nil
}

func scoreNumeric(item *PoolItem, raw json.RawMessage) (bool, error) {
	var got numericAnswer
	if err := json.Unmarshal(raw, &got); err != nil || got.Value == nil {
		return false, NewValidationError("answer", "numeric answer requires numeric value")
	}
	var want numericAnswer
	if err := json.Unmarshal(item.CorrectAnswer, &want); err != nil || want.Value == nil {
		return false, NewValidationError("correct_answer", "item %s has malformed key", item.ID)
	}
	tol := want.Tolerance
	if tol < 0 {
		tol = 0
	}
	return math.Abs(*got.Value-*want.Value) <= tol, nil
}
