package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Tender lifecycle statuses. The stored status is a cache; the effective
// value is derived from the end date at read time.
const (
	TenderStatusActive   = "Active"
	TenderStatusInactive = "Inactive"
)

// Evaluation statuses. An empty status means the bid is still undecided.
const (
	EvaluationApproved = "Approved"
	EvaluationRejected = "Rejected"
)

// Tender is a published procurement request with an itemized price schedule.
// Materials, Quantities and ProposedAmounts are parallel arrays: index i
// describes one line item.
type Tender struct {
	ID              string          `db:"id" json:"id"`
	Email           string          `db:"email" json:"email" validate:"required,email"`
	Title           string          `db:"title" json:"title" validate:"required,max=200"`
	Eligibility     string          `db:"eligibility" json:"eligibility" validate:"max=1000"`
	Description     string          `db:"description" json:"description" validate:"max=2000"`
	Type            string          `db:"type" json:"type" validate:"required,max=100"`
	Status          string          `db:"status" json:"status"`
	StartDate       time.Time       `db:"start_date" json:"startDate" validate:"required"`
	EndDate         time.Time       `db:"end_date" json:"endDate" validate:"required"`
	DocumentKey     string          `db:"document_key" json:"documentKey,omitempty"`
	Materials       pq.StringArray  `db:"materials" json:"materials" validate:"required,min=1"`
	Quantities      pq.Int64Array   `db:"quantities" json:"quantities" validate:"required,min=1"`
	ProposedAmounts pq.Float64Array `db:"proposed_amounts" json:"proposedAmounts" validate:"required,min=1"`
	TotalQuotation  float64         `db:"total_quotation" json:"totalQuotation"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"-"`
}

// ValidateLineItems enforces the parallel-array invariant.
func (t *Tender) ValidateLineItems() error {
	if len(t.Materials) != len(t.Quantities) || len(t.Materials) != len(t.ProposedAmounts) {
		return NewValidationError("materials, quantities and proposedAmounts must have equal length")
	}
	for i, q := range t.Quantities {
		if q <= 0 {
			return NewValidationError(fmt.Sprintf("quantity at position %d must be positive", i))
		}
	}
	for i, a := range t.ProposedAmounts {
		if a < 0 {
			return NewValidationError(fmt.Sprintf("proposed amount at position %d must not be negative", i))
		}
	}
	if !t.EndDate.After(t.StartDate) {
		return NewValidationError("endDate must be after startDate")
	}
	return nil
}

// ComputeTotal returns the quantity-weighted sum of the proposed amounts.
func (t *Tender) ComputeTotal() float64 {
	var total float64
	for i := range t.Quantities {
		if i < len(t.ProposedAmounts) {
			total += float64(t.Quantities[i]) * t.ProposedAmounts[i]
		}
	}
	return total
}

// EffectiveStatus derives the lifecycle status from the end date.
func (t *Tender) EffectiveStatus(now time.Time) string {
	if now.After(t.EndDate) {
		return TenderStatusInactive
	}
	return TenderStatusActive
}

// Refresh recomputes the derived fields. The stored status and total are
// caches, not ground truth, so every read path goes through here.
func (t *Tender) Refresh(now time.Time) {
	t.Status = t.EffectiveStatus(now)
	t.TotalQuotation = t.ComputeTotal()
}

// Bid is a competing price submission against a tender. ProposedAmounts is
// positionally aligned to the parent tender's line items and the bid is
// immutable after submission.
type Bid struct {
	ID               string          `db:"id" json:"id"`
	TenderID         string          `db:"tender_id" json:"tenderId" validate:"required"`
	BidderName       string          `db:"bidder_name" json:"bidderName" validate:"required,max=200"`
	CompanyName      string          `db:"company_name" json:"companyName" validate:"required,max=200"`
	CompanyRegNumber string          `db:"company_reg_number" json:"companyRegNumber,omitempty" validate:"max=100"`
	Email            string          `db:"email" json:"email" validate:"required,email"`
	PhoneNumber      string          `db:"phone_number" json:"phoneNumber" validate:"required,max=50"`
	BidAmount        float64         `db:"bid_amount" json:"bidAmount" validate:"required"`
	Description      string          `db:"description" json:"description" validate:"required,max=2000"`
	AdditionalNotes  string          `db:"additional_notes" json:"additionalNotes,omitempty" validate:"max=2000"`
	ExpiryDate       time.Time       `db:"expiry_date" json:"expiryDate"`
	FileKey          string          `db:"file_key" json:"fileKey,omitempty"`
	ProposedAmounts  pq.Float64Array `db:"proposed_amounts" json:"proposedAmounts" validate:"required,min=1"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
}

// BidEvaluation is the persisted score and approval status for one bid.
// At most one record exists per bid; the store enforces uniqueness on the
// bid reference. Comments doubles as the completion sentinel: a scored
// record carries "Evaluated", a placeholder created during an approval
// sweep carries "".
type BidEvaluation struct {
	ID        string    `db:"id" json:"id"`
	BidID     string    `db:"bid_id" json:"bidId"`
	Score     string    `db:"score" json:"evaluationScore"`
	Status    string    `db:"status" json:"evaluationStatus"`
	Comments  string    `db:"comments" json:"comments"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Notification is an in-app message for a bidder or tender owner.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Message   string    `db:"message" json:"message"`
	TenderID  string    `db:"tender_id" json:"tenderId,omitempty"`
	BidID     string    `db:"bid_id" json:"bidId,omitempty"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
