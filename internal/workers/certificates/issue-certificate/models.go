package issuecertificate

import (
	"context"
	"time"
)

type Input struct {
	UserID string `json:"userId"`
	PathID string `json:"pathId"`
}

type Output struct {
	CertificateID string    `json:"certificateId"`
	UniqueCode    string    `json:"uniqueCode"`
	IssuedAt      time.Time `json:"issuedAt"`
}

// EventPublisher is satisfied by aws.SNSClient.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topicARN, eventType string, event interface{}) (string, error)
}
