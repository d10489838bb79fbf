package featuresubscribe

import "context"

type Input struct {
	Email   string `json:"email"`
	Feature string `json:"feature"`
}

type Output struct {
	Subscribed        bool   `json:"subscribed"`
	AlreadySubscribed bool   `json:"alreadySubscribed"`
	Message           string `json:"message"`
	ConfirmationID    string `json:"confirmationId,omitempty"`
}

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, to, subject, body string) (string, error)
}
