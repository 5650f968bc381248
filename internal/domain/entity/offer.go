package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferStatus is the lifecycle status of an offer
type OfferStatus string

const (
	OfferDraft           OfferStatus = "DRAFT"
	OfferPendingApproval OfferStatus = "PENDING_APPROVAL"
	OfferApproved        OfferStatus = "APPROVED"
	OfferRejected        OfferStatus = "REJECTED"
	OfferLetterGenerated OfferStatus = "LETTER_GENERATED"
	OfferAccepted        OfferStatus = "ACCEPTED"
	OfferDeclined        OfferStatus = "DECLINED"
	OfferExpired         OfferStatus = "EXPIRED"
)

// IsTerminal returns true once the candidate has resolved the offer or it lapsed
func (s OfferStatus) IsTerminal() bool {
	switch s {
	case OfferAccepted, OfferDeclined, OfferExpired:
		return true
	}
	return false
}

// ApprovalState is the verdict state of a single approval record
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "PENDING"
	ApprovalApproved ApprovalState = "APPROVED"
	ApprovalRejected ApprovalState = "REJECTED"
)

// Offer is one compensation proposal for a (requisition, candidate) pair.
// At most one non-terminal offer may exist per pair; the schema enforces this
// with a partial unique index.
type Offer struct {
	ID            int64                  `json:"-"`
	OfferID       string                 `json:"offer_id"`
	RequisitionID int64                  `json:"requisition_id"`
	CandidateID   string                 `json:"candidate_id"`
	Grade         string                 `json:"grade"`
	Base          decimal.Decimal        `json:"base"`
	Allowances    map[string]interface{} `json:"allowances"`
	Benefits      map[string]interface{} `json:"benefits"`
	VariablePay   decimal.Decimal        `json:"variable_pay"`
	Currency      string                 `json:"currency"`
	Country       string                 `json:"country"`
	Status        OfferStatus            `json:"status"`
	ExpiryDate    time.Time              `json:"expiry_date"`
	CounterNote   string                 `json:"counter_note,omitempty"`
	LetterPath    string                 `json:"letter_path,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ApprovalRecord is one required role's verdict on an offer. A batch of PENDING
// records is created at submission time and replaced wholesale on counter-offer.
type ApprovalRecord struct {
	ID         int64         `json:"id"`
	OfferID    int64         `json:"-"`
	Role       string        `json:"role"`
	ApproverID *int64        `json:"approver,omitempty"`
	State      ApprovalState `json:"state"`
	Comment    string        `json:"comment,omitempty"`
	ActedAt    *time.Time    `json:"acted_at,omitempty"`
}

// SalaryBand is reference data: the allowed base range for a (country, grade) pair
type SalaryBand struct {
	ID        int64           `json:"id"`
	Country   string          `json:"country"`
	Grade     string          `json:"grade"`
	MinAmount decimal.Decimal `json:"min_amount"`
	MaxAmount decimal.Decimal `json:"max_amount"`
}

// Contains reports whether base falls inside the band, inclusive on both ends
func (b *SalaryBand) Contains(base decimal.Decimal) bool {
	return base.GreaterThanOrEqual(b.MinAmount) && base.LessThanOrEqual(b.MaxAmount)
}
