package manageforumpost

import "elevate-workers/internal/common/validation"

const minContentLength = 10

// postSchema returns the rules for one action. Content is only checked
// when the action writes it.
func postSchema(action Action) validation.JSONSchema {
	props := map[string]validation.Property{
		"action": {Type: "string", Enum: []string{string(ActionCreate), string(ActionUpdate), string(ActionDelete)}},
		"userId": {Type: "string", Format: "uuid"},
	}
	required := []string{"action", "userId"}

	switch action {
	case ActionCreate:
		props["topicId"] = validation.Property{Type: "string", MinLength: validation.IntPtr(1)}
		props["content"] = validation.Property{Type: "string", MinLength: validation.IntPtr(minContentLength)}
		required = append(required, "topicId", "content")
	case ActionUpdate:
		props["postId"] = validation.Property{Type: "string", MinLength: validation.IntPtr(1)}
		props["content"] = validation.Property{Type: "string", MinLength: validation.IntPtr(minContentLength)}
		required = append(required, "postId", "content")
	case ActionDelete:
		props["postId"] = validation.Property{Type: "string", MinLength: validation.IntPtr(1)}
		required = append(required, "postId")
	}

	return validation.JSONSchema{
		Type:       "object",
		Required:   required,
		Properties: props,
	}
}

func toDocument(input *Input) map[string]interface{} {
	doc := map[string]interface{}{
		"action": string(input.Action),
		"userId": input.UserID,
	}
	for key, value := range map[string]string{
		"topicId": input.TopicID,
		"postId":  input.PostID,
		"content": input.Content,
	} {
		if value != "" {
			doc[key] = value
		}
	}
	return doc
}
