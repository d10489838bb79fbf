package validatetestanswers

import (
	"encoding/json"
	"fmt"

	"elevate-workers/internal/common/validation"
	"elevate-workers/internal/profiletest"
)

var nonBlank = `\S`

var selectionSchema = validation.Property{
	OneOf: []validation.Property{
		{Type: "string", MinLength: validation.IntPtr(1), Pattern: nonBlank},
		{
			Type:     "array",
			MinItems: validation.IntPtr(1),
			Items:    &validation.Property{Type: "string", MinLength: validation.IntPtr(1), Pattern: nonBlank},
		},
	},
}

func submissionSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"answers"},
		Properties: map[string]validation.Property{
			"answers": {
				Type:                 "object",
				Description:          "question id to selected option id(s)",
				MinProperties:        validation.IntPtr(1),
				AdditionalProperties: selectionSchema,
			},
		},
		AdditionalProperties: validation.BoolPtr(true),
	}
}

// isEmpty reports a missing or zero-entry answers object.
func isEmpty(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// toAnswerSet converts validated raw answers into a normalised AnswerSet.
func toAnswerSet(raw interface{}) (profiletest.AnswerSet, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	var answers profiletest.AnswerSet
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return answers.Normalize(), nil
}
