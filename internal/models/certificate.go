// internal/models/certificate.go
package models

import "time"

type Certificate struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	PathID     string    `json:"pathId"`
	UniqueCode string    `json:"uniqueCode"`
	IssuedAt   time.Time `json:"issuedAt"`
}

// CertificateIssuedEvent is published when a certificate is created.
type CertificateIssuedEvent struct {
	CertificateID string    `json:"certificateId"`
	UserID        string    `json:"userId"`
	PathID        string    `json:"pathId"`
	UniqueCode    string    `json:"uniqueCode"`
	IssuedAt      time.Time `json:"issuedAt"`
}

const EventCertificateIssued = "certificate.issued"

// CertificateSummary is one entry of a user's certificate list.
type CertificateSummary struct {
	ID         string    `json:"id"`
	UniqueCode string    `json:"uniqueCode"`
	IssuedAt   time.Time `json:"issuedAt"`
	Path       Path      `json:"path"`
}

// DefaultCertificateHolder is printed when the holder has no full name.
const DefaultCertificateHolder = "Participante Elevate"
