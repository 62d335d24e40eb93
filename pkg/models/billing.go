package models

import "time"

// Quota tracks free and paid job-posting allowance
type Quota struct {
	FreeQuota          int   `json:"free_quota"`
	UsedFreeQuota      int   `json:"used_free_quota"`
	RemainingFreeQuota int   `json:"remaining_free_quota"`
	PaidQuota          int   `json:"paid_quota"`
	PricePerJob        int64 `json:"price_per_job"`
}

// CanPublishFree reports whether another job can be published without payment
func (q Quota) CanPublishFree() bool {
	return q.RemainingFreeQuota > 0 || q.PaidQuota > 0
}

// Package is a purchasable bundle of job-posting credits
type Package struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	JobCredits  int    `json:"job_credits"`
	Price       int64  `json:"price"`
}

// PaymentStatus is the admin review state of a payment proof
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentRejected  PaymentStatus = "rejected"
)

// Payment represents a submitted payment proof
type Payment struct {
	ID          int64         `json:"id"`
	JobID       *int64        `json:"job_id,omitempty"`
	PackageID   string        `json:"package_id,omitempty"`
	Amount      int64         `json:"amount"`
	Status      PaymentStatus `json:"status"`
	ProofURL    string        `json:"proof_image_url,omitempty"`
	Note        string        `json:"note,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
	ConfirmedAt *time.Time    `json:"confirmed_at,omitempty"`
}

// PaymentList is a page of payments
type PaymentList struct {
	Payments   []Payment  `json:"payments"`
	Pagination Pagination `json:"pagination"`
}

// PaymentProof is the multipart form of POST /company/payments/proof
type PaymentProof struct {
	JobID     int64  `validate:"required_without=PackageID"`
	PackageID string `validate:"required_without=JobID"`
	Amount    int64  `validate:"required,gt=0"`
	FilePath  string `validate:"required,file"`
	Note      string `validate:"max=500"`
}

// PaymentRequired is the payload the server attaches to a 402 response when
// the free quota is exhausted.
type PaymentRequired struct {
	Price       int64  `json:"price"`
	JobID       int64  `json:"job_id,omitempty"`
	BankName    string `json:"bank_name,omitempty"`
	AccountNo   string `json:"account_number,omitempty"`
	AccountName string `json:"account_name,omitempty"`
}
