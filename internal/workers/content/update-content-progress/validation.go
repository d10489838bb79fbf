package updatecontentprogress

import (
	"elevate-workers/internal/common/validation"
	"elevate-workers/internal/models"
)

func progressSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"userId", "contentId", "status"},
		Properties: map[string]validation.Property{
			"userId":    {Type: "string", Format: "uuid"},
			"contentId": {Type: "integer", Minimum: validation.FloatPtr(1)},
			"status": {
				Type: "string",
				Enum: []string{
					string(models.ProgressStarted),
					string(models.ProgressInProgress),
					string(models.ProgressCompleted),
				},
			},
			"delete": {Type: "boolean"},
		},
		AdditionalProperties: validation.BoolPtr(false),
	}
}

func toDocument(input *Input) map[string]interface{} {
	return map[string]interface{}{
		"userId":    input.UserID,
		"contentId": input.ContentID,
		"status":    string(input.Status),
		"delete":    input.Delete,
	}
}
