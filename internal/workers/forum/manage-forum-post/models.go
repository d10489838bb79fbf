package manageforumpost

import "elevate-workers/internal/models"

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Input addresses a topic for create and a post for update and delete.
type Input struct {
	Action  Action `json:"action"`
	UserID  string `json:"userId"`
	TopicID string `json:"topicId"`
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

type Output struct {
	Post    *models.Post `json:"post,omitempty"`
	Deleted bool         `json:"deleted"`
}
