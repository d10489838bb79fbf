package validatecertificate

import "time"

type Input struct {
	UniqueCode string `json:"uniqueCode"`
}

type Output struct {
	Valid         bool      `json:"valid"`
	HolderName    string    `json:"holderName"`
	PathTitle     string    `json:"pathTitle"`
	IssuedAt      time.Time `json:"issuedAt"`
	IssuedDate    string    `json:"issuedDate"`
	UniqueCode    string    `json:"uniqueCode"`
	ValidationURL string    `json:"validationUrl"`
}
