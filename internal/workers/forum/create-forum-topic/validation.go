package createforumtopic

import "elevate-workers/internal/common/validation"

func topicSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId", "title"},
		Properties: map[string]validation.Property{
			"userId":   {Type: "string", Format: "uuid"},
			"title":    {Type: "string", MinLength: validation.IntPtr(5), MaxLength: validation.IntPtr(200)},
			"category": {Type: "string", MaxLength: validation.IntPtr(50)},
		},
		AdditionalProperties: validation.BoolPtr(false),
	}
}

func toDocument(input *Input) map[string]interface{} {
	doc := map[string]interface{}{
		"userId": input.UserID,
		"title":  input.Title,
	}
	if input.Category != "" {
		doc["category"] = input.Category
	}
	return doc
}
