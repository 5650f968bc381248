package port

import (
	"context"
	"time"

	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

// OfferRepository defines persistence operations for Offer
type OfferRepository interface {
	Create(ctx context.Context, offer *entity.Offer) error
	GetByOfferID(ctx context.Context, offerID string) (*entity.Offer, error)
	Update(ctx context.Context, offer *entity.Offer) error
	List(ctx context.Context, status, candidateID string) ([]*entity.Offer, error)
	// ListExpired returns non-terminal offers whose expiry passed before now
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Offer, error)
}

// ApprovalRecordRepository defines persistence operations for ApprovalRecord
type ApprovalRecordRepository interface {
	CreateBatch(ctx context.Context, records []*entity.ApprovalRecord) error
	// GetPending returns the unique PENDING record for (offer, role), nil if absent
	GetPending(ctx context.Context, offerID int64, role string) (*entity.ApprovalRecord, error)
	Update(ctx context.Context, record *entity.ApprovalRecord) error
	ListByOfferID(ctx context.Context, offerID int64) ([]*entity.ApprovalRecord, error)
	DeleteByOfferID(ctx context.Context, offerID int64) error
}

// SalaryBandRepository defines read access to salary band reference data
type SalaryBandRepository interface {
	// GetByCountryGrade returns nil when no band is configured for the pair
	GetByCountryGrade(ctx context.Context, country, grade string) (*entity.SalaryBand, error)
	List(ctx context.Context) ([]*entity.SalaryBand, error)
}

// RequisitionFilter narrows requisition listings
type RequisitionFilter struct {
	Role           string
	UserID         int64
	ApprovalStatus string // "", "all", or one of the three status values
	Limit          int
	Offset         int
}

// RequisitionRepository defines persistence operations for Requisition
type RequisitionRepository interface {
	Create(ctx context.Context, req *entity.Requisition) error
	GetByID(ctx context.Context, id int64) (*entity.Requisition, error)
	Update(ctx context.Context, req *entity.Requisition) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter RequisitionFilter) ([]*entity.Requisition, error)
}

// ActivityLogRepository defines append and read operations for the audit trail
type ActivityLogRepository interface {
	Create(ctx context.Context, log *entity.ActivityLogEntry) error
	// ListByRequisitionID returns entries ordered newest-first
	ListByRequisitionID(ctx context.Context, requisitionID int64) ([]*entity.ActivityLogEntry, error)
}

// UserRepository defines read access to the user directory
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	ListByRole(ctx context.Context, role string) ([]*entity.User, error)
}

// NotificationRepository records dispatch attempts
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errorMsg string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
