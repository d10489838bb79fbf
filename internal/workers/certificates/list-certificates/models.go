package listcertificates

import "elevate-workers/internal/models"

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Certificates     []models.CertificateSummary `json:"certificates"`
	CertificateCount int                         `json:"certificateCount"`
}
