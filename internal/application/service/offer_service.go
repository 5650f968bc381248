package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
	"github.com/hireflowhq/hireflow/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Approval role sets selected by salary band membership
var (
	outsideBandRoles = []string{"finance", "leadership"}
	inBandRoles      = []string{"hr"}
)

const defaultExpiryDays = 14

// CreateOfferInput carries the fields for a new draft offer
type CreateOfferInput struct {
	RequisitionID int64
	CandidateID   string
	Grade         string
	Base          decimal.Decimal
	Allowances    map[string]interface{}
	Benefits      map[string]interface{}
	VariablePay   decimal.Decimal
	Currency      string
	Country       string
	ExpiryDays    int
}

// SubmitResult reports which approval policy applied on submission
type SubmitResult struct {
	Outside bool     `json:"outside"`
	Roles   []string `json:"roles"`
}

// OfferView is an offer with its denormalized approval records
type OfferView struct {
	*entity.Offer
	Approvals []*entity.ApprovalRecord `json:"approvals"`
}

// OfferService owns the offer approval lifecycle
type OfferService interface {
	Create(ctx context.Context, input CreateOfferInput) (*entity.Offer, error)
	SubmitForApproval(ctx context.Context, offerID, country string) (*SubmitResult, error)
	RecordApproval(ctx context.Context, offerID, role string, approverID int64, action, comment string) (*entity.Offer, error)
	GenerateLetter(ctx context.Context, offerID string) error
	MarkLetterGenerated(ctx context.Context, offerID, letterPath string) error
	CandidateAction(ctx context.Context, offerID, action string, counterBase *decimal.Decimal, counterNote string) (*entity.Offer, error)
	Get(ctx context.Context, offerID string) (*OfferView, error)
	List(ctx context.Context, status, candidateID string) ([]*OfferView, error)
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

type offerServiceImpl struct {
	offerRepo  port.OfferRepository
	recordRepo port.ApprovalRecordRepository
	bandRepo   port.SalaryBandRepository
	txManager  port.TransactionManager
	notifier   port.Notifier
	letterGen  port.LetterGenerator
	expiryDays int
	logger     Logger
}

// NewOfferService creates a new OfferService. expiryDays is the default offer
// validity window applied when a creation request does not set one.
func NewOfferService(
	offerRepo port.OfferRepository,
	recordRepo port.ApprovalRecordRepository,
	bandRepo port.SalaryBandRepository,
	txManager port.TransactionManager,
	notifier port.Notifier,
	letterGen port.LetterGenerator,
	expiryDays int,
	logger Logger,
) OfferService {
	if expiryDays <= 0 {
		expiryDays = defaultExpiryDays
	}
	return &offerServiceImpl{
		offerRepo:  offerRepo,
		recordRepo: recordRepo,
		bandRepo:   bandRepo,
		txManager:  txManager,
		notifier:   notifier,
		letterGen:  letterGen,
		expiryDays: expiryDays,
		logger:     logger,
	}
}

// Create creates a new draft offer
func (s *offerServiceImpl) Create(ctx context.Context, input CreateOfferInput) (*entity.Offer, error) {
	expiryDays := input.ExpiryDays
	if expiryDays <= 0 {
		expiryDays = s.expiryDays
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	offer := &entity.Offer{
		OfferID:       uuid.NewString(),
		RequisitionID: input.RequisitionID,
		CandidateID:   input.CandidateID,
		Grade:         input.Grade,
		Base:          input.Base,
		Allowances:    input.Allowances,
		Benefits:      input.Benefits,
		VariablePay:   input.VariablePay,
		Currency:      currency,
		Country:       input.Country,
		Status:        entity.OfferDraft,
		ExpiryDate:    now.AddDate(0, 0, expiryDays),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		s.logger.Error("Failed to create offer", "error", err,
			"requisition_id", input.RequisitionID, "candidate_id", input.CandidateID)
		return nil, err
	}

	s.logger.Info("Offer created", "offer_id", offer.OfferID, "status", offer.Status)
	return offer, nil
}

// SubmitForApproval routes a draft or rejected offer into the approval flow.
// Band membership decides the required role set: in-band offers need hr,
// outside-band (or unconfigured band) offers need finance and leadership.
func (s *offerServiceImpl) SubmitForApproval(ctx context.Context, offerID, country string) (*SubmitResult, error) {
	var result *SubmitResult

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		offer, err := s.getOffer(txCtx, offerID)
		if err != nil {
			return err
		}

		machine := workflow.NewOfferMachine(workflow.State(offer.Status))
		if err := machine.Fire(txCtx, workflow.TriggerSubmit); err != nil {
			return fmt.Errorf("submit offer %s: %w", offerID, err)
		}

		outside, roles, err := s.resolveApprovalRoles(txCtx, country, offer.Grade, offer.Base)
		if err != nil {
			return err
		}

		// A resubmission after rejection starts a fresh approval round, so any
		// prior verdicts are dropped before the new PENDING set is created
		if err := s.recordRepo.DeleteByOfferID(txCtx, offer.ID); err != nil {
			return fmt.Errorf("delete approval records: %w", err)
		}
		records := make([]*entity.ApprovalRecord, 0, len(roles))
		for _, role := range roles {
			records = append(records, &entity.ApprovalRecord{
				OfferID: offer.ID,
				Role:    role,
				State:   entity.ApprovalPending,
			})
		}
		if err := s.recordRepo.CreateBatch(txCtx, records); err != nil {
			return fmt.Errorf("create approval records: %w", err)
		}

		offer.Status = entity.OfferStatus(machine.State())
		offer.Country = country
		if err := s.offerRepo.Update(txCtx, offer); err != nil {
			return fmt.Errorf("update offer: %w", err)
		}

		result = &SubmitResult{Outside: outside, Roles: roles}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit offer for approval", "error", err, "offer_id", offerID)
		return nil, err
	}

	s.logger.Info("Offer submitted for approval",
		"offer_id", offerID, "outside_band", result.Outside, "roles", strings.Join(result.Roles, ","))

	s.notifyApprovers(result.Roles, fmt.Sprintf("Offer %s requires approval", offerID), offerID)
	return result, nil
}

// RecordApproval records one role's verdict and re-derives the overall offer
// status from the full record set: any rejection rejects the offer, unanimous
// approval approves it, anything else keeps it pending.
func (s *offerServiceImpl) RecordApproval(ctx context.Context, offerID, role string, approverID int64, action, comment string) (*entity.Offer, error) {
	var updated *entity.Offer

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		offer, err := s.getOffer(txCtx, offerID)
		if err != nil {
			return err
		}
		if offer.Status.IsTerminal() {
			return fmt.Errorf("offer %s is %s: %w", offerID, offer.Status, workflow.ErrInvalidTransition)
		}

		record, err := s.recordRepo.GetPending(txCtx, offer.ID, role)
		if err != nil {
			return fmt.Errorf("get pending approval: %w", err)
		}
		if record == nil {
			return fmt.Errorf("no pending approval for role %q on offer %s: %w", role, offerID, entity.ErrNotFound)
		}

		verdict := strings.ToUpper(action)
		if verdict != string(entity.ApprovalApproved) && verdict != string(entity.ApprovalRejected) {
			return fmt.Errorf("action %q: %w", action, entity.ErrInvalidArgument)
		}

		now := time.Now().UTC()
		record.ApproverID = &approverID
		record.Comment = comment
		record.ActedAt = &now
		record.State = entity.ApprovalState(verdict)
		if err := s.recordRepo.Update(txCtx, record); err != nil {
			return fmt.Errorf("update approval record: %w", err)
		}

		// Re-read every record so the aggregate never drifts from partial updates
		records, err := s.recordRepo.ListByOfferID(txCtx, offer.ID)
		if err != nil {
			return fmt.Errorf("list approval records: %w", err)
		}
		offer.Status = aggregateStatus(records)

		if err := s.offerRepo.Update(txCtx, offer); err != nil {
			return fmt.Errorf("update offer: %w", err)
		}

		updated = offer
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to record approval", "error", err, "offer_id", offerID, "role", role)
		return nil, err
	}

	s.logger.Info("Approval recorded",
		"offer_id", offerID, "role", role, "action", strings.ToUpper(action), "offer_status", updated.Status)
	return updated, nil
}

// GenerateLetter queues offer letter rendering for an approved offer. The
// generator advances the offer to LETTER_GENERATED via MarkLetterGenerated
// once rendering completes.
func (s *offerServiceImpl) GenerateLetter(ctx context.Context, offerID string) error {
	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.Status != entity.OfferApproved {
		return fmt.Errorf("offer %s is %s, must be APPROVED to generate letter: %w",
			offerID, offer.Status, workflow.ErrInvalidTransition)
	}

	go func() {
		genCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.letterGen.RenderAndDispatch(genCtx, offerID); err != nil {
			s.logger.Error("Letter generation dispatch failed", "error", err, "offer_id", offerID)
		}
	}()

	s.logger.Info("Letter generation queued", "offer_id", offerID)
	return nil
}

// MarkLetterGenerated is the completion callback for the letter generator
func (s *offerServiceImpl) MarkLetterGenerated(ctx context.Context, offerID, letterPath string) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		offer, err := s.getOffer(txCtx, offerID)
		if err != nil {
			return err
		}

		machine := workflow.NewOfferMachine(workflow.State(offer.Status))
		if err := machine.Fire(txCtx, workflow.TriggerMarkLetterGenerated); err != nil {
			return fmt.Errorf("mark letter generated for offer %s: %w", offerID, err)
		}

		offer.Status = entity.OfferStatus(machine.State())
		offer.LetterPath = letterPath
		return s.offerRepo.Update(txCtx, offer)
	})
	if err != nil {
		s.logger.Error("Failed to mark letter generated", "error", err, "offer_id", offerID)
		return err
	}

	s.logger.Info("Offer letter generated", "offer_id", offerID, "letter_path", letterPath)
	return nil
}

// CandidateAction applies the candidate's resolution: accept, decline, or
// counter. A counter replaces the entire approval record set and re-evaluates
// band membership against the offer's own country.
func (s *offerServiceImpl) CandidateAction(ctx context.Context, offerID, action string, counterBase *decimal.Decimal, counterNote string) (*entity.Offer, error) {
	var (
		updated     *entity.Offer
		notifyRoles []string
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		offer, err := s.getOffer(txCtx, offerID)
		if err != nil {
			return err
		}
		if offer.Status != entity.OfferLetterGenerated && offer.Status != entity.OfferPendingApproval {
			return fmt.Errorf("offer %s is %s, not candidate-actionable: %w",
				offerID, offer.Status, workflow.ErrInvalidTransition)
		}

		machine := workflow.NewOfferMachine(workflow.State(offer.Status))

		switch strings.ToUpper(action) {
		case "ACCEPT":
			if err := machine.Fire(txCtx, workflow.TriggerAccept); err != nil {
				return err
			}
		case "DECLINE":
			if err := machine.Fire(txCtx, workflow.TriggerDecline); err != nil {
				return err
			}
		case "COUNTER":
			if counterBase == nil {
				return fmt.Errorf("counter_base required for COUNTER action: %w", entity.ErrInvalidArgument)
			}
			if err := machine.Fire(txCtx, workflow.TriggerCounter); err != nil {
				return err
			}

			offer.Base = *counterBase
			offer.CounterNote = counterNote

			_, roles, err := s.resolveApprovalRoles(txCtx, offer.Country, offer.Grade, offer.Base)
			if err != nil {
				return err
			}

			// Replace the approval set wholesale; stale verdicts must not
			// carry over to the new compensation
			if err := s.recordRepo.DeleteByOfferID(txCtx, offer.ID); err != nil {
				return fmt.Errorf("delete approval records: %w", err)
			}
			records := make([]*entity.ApprovalRecord, 0, len(roles))
			for _, role := range roles {
				records = append(records, &entity.ApprovalRecord{
					OfferID: offer.ID,
					Role:    role,
					State:   entity.ApprovalPending,
				})
			}
			if err := s.recordRepo.CreateBatch(txCtx, records); err != nil {
				return fmt.Errorf("create approval records: %w", err)
			}
			notifyRoles = roles
		default:
			return fmt.Errorf("unknown candidate action %q: %w", action, entity.ErrInvalidArgument)
		}

		offer.Status = entity.OfferStatus(machine.State())
		if err := s.offerRepo.Update(txCtx, offer); err != nil {
			return fmt.Errorf("update offer: %w", err)
		}

		updated = offer
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to process candidate action", "error", err, "offer_id", offerID, "action", action)
		return nil, err
	}

	s.logger.Info("Candidate action processed",
		"offer_id", offerID, "action", strings.ToUpper(action), "offer_status", updated.Status)

	if len(notifyRoles) > 0 {
		s.notifyApprovers(notifyRoles, fmt.Sprintf("Counter offer for %s requires approval", offerID), offerID)
	}
	return updated, nil
}

// Get retrieves an offer with its approval records
func (s *offerServiceImpl) Get(ctx context.Context, offerID string) (*OfferView, error) {
	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	records, err := s.recordRepo.ListByOfferID(ctx, offer.ID)
	if err != nil {
		s.logger.Error("Failed to list approval records", "error", err, "offer_id", offerID)
		return nil, err
	}

	return &OfferView{Offer: offer, Approvals: records}, nil
}

// List retrieves offers with optional status and candidate filters
func (s *offerServiceImpl) List(ctx context.Context, status, candidateID string) ([]*OfferView, error) {
	offers, err := s.offerRepo.List(ctx, status, candidateID)
	if err != nil {
		s.logger.Error("Failed to list offers", "error", err)
		return nil, err
	}

	views := make([]*OfferView, 0, len(offers))
	for _, offer := range offers {
		records, err := s.recordRepo.ListByOfferID(ctx, offer.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, &OfferView{Offer: offer, Approvals: records})
	}
	return views, nil
}

// ExpireDue transitions every non-terminal offer past its expiry to EXPIRED
// and returns the number of offers expired
func (s *offerServiceImpl) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	expired := 0

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		offers, err := s.offerRepo.ListExpired(txCtx, now, 100)
		if err != nil {
			return fmt.Errorf("list expired offers: %w", err)
		}

		for _, offer := range offers {
			machine := workflow.NewOfferMachine(workflow.State(offer.Status))
			if err := machine.Fire(txCtx, workflow.TriggerExpire); err != nil {
				s.logger.Error("Cannot expire offer", "error", err, "offer_id", offer.OfferID)
				continue
			}
			offer.Status = entity.OfferStatus(machine.State())
			if err := s.offerRepo.Update(txCtx, offer); err != nil {
				return fmt.Errorf("update offer %s: %w", offer.OfferID, err)
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.logger.Info("Expired offers", "count", expired)
	}
	return expired, nil
}

func (s *offerServiceImpl) getOffer(ctx context.Context, offerID string) (*entity.Offer, error) {
	offer, err := s.offerRepo.GetByOfferID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("get offer: %w", err)
	}
	if offer == nil {
		return nil, fmt.Errorf("offer %s: %w", offerID, entity.ErrNotFound)
	}
	return offer, nil
}

// resolveApprovalRoles decides the required role set from band membership.
// A missing band is treated as outside-band so unconfigured (country, grade)
// pairs always take the stricter route.
func (s *offerServiceImpl) resolveApprovalRoles(ctx context.Context, country, grade string, base decimal.Decimal) (bool, []string, error) {
	band, err := s.bandRepo.GetByCountryGrade(ctx, country, grade)
	if err != nil {
		return false, nil, fmt.Errorf("get salary band: %w", err)
	}

	outside := band == nil || !band.Contains(base)
	if outside {
		return true, append([]string(nil), outsideBandRoles...), nil
	}
	return false, append([]string(nil), inBandRoles...), nil
}

// aggregateStatus derives the overall offer status from the full record set
func aggregateStatus(records []*entity.ApprovalRecord) entity.OfferStatus {
	allApproved := len(records) > 0
	for _, r := range records {
		switch r.State {
		case entity.ApprovalRejected:
			return entity.OfferRejected
		case entity.ApprovalApproved:
		default:
			allApproved = false
		}
	}
	if allApproved {
		return entity.OfferApproved
	}
	return entity.OfferPendingApproval
}

// notifyApprovers dispatches a role notification without blocking or failing
// the enclosing transition
func (s *offerServiceImpl) notifyApprovers(roles []string, subject, offerID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.NotifyRoles(ctx, roles, subject, offerID); err != nil {
			s.logger.Error("Approval notification dispatch failed",
				"error", err, "offer_id", offerID, "roles", strings.Join(roles, ","))
		}
	}()
}
