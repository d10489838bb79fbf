package interviewchat

import (
	"strings"

	"elevate-workers/internal/common/validation"
)

func chatSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"topic", "history"},
		Properties: map[string]validation.Property{
			"topic": {
				Type:      "string",
				MinLength: validation.IntPtr(3),
				MaxLength: validation.IntPtr(100),
			},
			"history": {
				Type:     "array",
				MinItems: validation.IntPtr(1),
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"sender", "text"},
					Properties: map[string]validation.Property{
						"sender": {Type: "string", Enum: []string{SenderUser, SenderBot}},
						"text":   {Type: "string", MinLength: validation.IntPtr(1)},
					},
				},
			},
		},
	}
}

// normalize trims the topic and every message text in place.
func normalize(input *Input) {
	input.Topic = strings.TrimSpace(input.Topic)
	for i := range input.History {
		input.History[i].Text = strings.TrimSpace(input.History[i].Text)
	}
}

func toDocument(input *Input) map[string]interface{} {
	doc := map[string]interface{}{"topic": input.Topic}
	if input.History != nil {
		history := make([]interface{}, 0, len(input.History))
		for _, m := range input.History {
			history = append(history, map[string]interface{}{"sender": m.Sender, "text": m.Text})
		}
		doc["history"] = history
	}
	return doc
}
