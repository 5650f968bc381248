package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

const offerColumns = `
	id, offer_id, requisition_id, candidate_id, grade, base, allowances,
	benefits, variable_pay, currency, country, status, expiry_date,
	counter_note, letter_path, created_at, updated_at`

// OfferRepository implements port.OfferRepository
type OfferRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *sql.DB, logger *zap.Logger) port.OfferRepository {
	return &OfferRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new offer. A unique-constraint violation on the partial
// index means another non-terminal offer exists for the same
// (requisition, candidate) pair and surfaces as ErrInvalidArgument.
func (r *OfferRepository) Create(ctx context.Context, offer *entity.Offer) error {
	allowances, benefits, err := marshalComponents(offer)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO offers (
			offer_id, requisition_id, candidate_id, grade, base, allowances,
			benefits, variable_pay, currency, country, status, expiry_date,
			counter_note, letter_path, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		offer.OfferID,
		offer.RequisitionID,
		offer.CandidateID,
		offer.Grade,
		offer.Base.String(),
		allowances,
		benefits,
		offer.VariablePay.String(),
		offer.Currency,
		offer.Country,
		offer.Status,
		offer.ExpiryDate,
		offer.CounterNote,
		offer.LetterPath,
		offer.CreatedAt,
		offer.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("active offer already exists for requisition %d and candidate %s: %w",
				offer.RequisitionID, offer.CandidateID, entity.ErrInvalidArgument)
		}
		r.logger.Error("Failed to create offer", zap.Error(err))
		return fmt.Errorf("failed to create offer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	offer.ID = id
	return nil
}

// GetByOfferID retrieves an offer by its public token, nil when absent
func (r *OfferRepository) GetByOfferID(ctx context.Context, offerID string) (*entity.Offer, error) {
	query := `SELECT` + offerColumns + ` FROM offers WHERE offer_id = ?`

	offer, err := scanOffer(getExecutor(ctx, r.db).QueryRowContext(ctx, query, offerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get offer", zap.String("offer_id", offerID), zap.Error(err))
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return offer, nil
}

// Update persists the mutable offer fields and refreshes updated_at
func (r *OfferRepository) Update(ctx context.Context, offer *entity.Offer) error {
	allowances, benefits, err := marshalComponents(offer)
	if err != nil {
		return err
	}

	offer.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE offers SET
			grade = ?, base = ?, allowances = ?, benefits = ?, variable_pay = ?,
			currency = ?, country = ?, status = ?, expiry_date = ?,
			counter_note = ?, letter_path = ?, updated_at = ?
		WHERE id = ?
	`

	_, err = getExecutor(ctx, r.db).ExecContext(ctx, query,
		offer.Grade,
		offer.Base.String(),
		allowances,
		benefits,
		offer.VariablePay.String(),
		offer.Currency,
		offer.Country,
		offer.Status,
		offer.ExpiryDate,
		offer.CounterNote,
		offer.LetterPath,
		offer.UpdatedAt,
		offer.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update offer", zap.String("offer_id", offer.OfferID), zap.Error(err))
		return fmt.Errorf("failed to update offer: %w", err)
	}

	return nil
}

// List retrieves offers with optional status and candidate filters,
// newest first
func (r *OfferRepository) List(ctx context.Context, status, candidateID string) ([]*entity.Offer, error) {
	query := `SELECT` + offerColumns + ` FROM offers WHERE 1=1`
	args := []interface{}{}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if candidateID != "" {
		query += ` AND candidate_id = ?`
		args = append(args, candidateID)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryOffers(ctx, query, args...)
}

// ListExpired retrieves non-terminal offers whose expiry passed before now
func (r *OfferRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Offer, error) {
	query := `SELECT` + offerColumns + ` FROM offers
		WHERE status NOT IN ('ACCEPTED', 'DECLINED', 'EXPIRED')
		AND expiry_date < ?
		ORDER BY expiry_date ASC
		LIMIT ?`

	return r.queryOffers(ctx, query, now, limit)
}

func (r *OfferRepository) queryOffers(ctx context.Context, query string, args ...interface{}) ([]*entity.Offer, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list offers", zap.Error(err))
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	var offers []*entity.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	return offers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(row rowScanner) (*entity.Offer, error) {
	var (
		offer       entity.Offer
		base        string
		variablePay string
		allowances  sql.NullString
		benefits    sql.NullString
		counterNote sql.NullString
		letterPath  sql.NullString
	)

	err := row.Scan(
		&offer.ID,
		&offer.OfferID,
		&offer.RequisitionID,
		&offer.CandidateID,
		&offer.Grade,
		&base,
		&allowances,
		&benefits,
		&variablePay,
		&offer.Currency,
		&offer.Country,
		&offer.Status,
		&offer.ExpiryDate,
		&counterNote,
		&letterPath,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if offer.Base, err = decimal.NewFromString(base); err != nil {
		return nil, fmt.Errorf("invalid base amount %q: %w", base, err)
	}
	if offer.VariablePay, err = decimal.NewFromString(variablePay); err != nil {
		return nil, fmt.Errorf("invalid variable pay %q: %w", variablePay, err)
	}
	if allowances.Valid && allowances.String != "" {
		if err := json.Unmarshal([]byte(allowances.String), &offer.Allowances); err != nil {
			return nil, fmt.Errorf("invalid allowances payload: %w", err)
		}
	}
	if benefits.Valid && benefits.String != "" {
		if err := json.Unmarshal([]byte(benefits.String), &offer.Benefits); err != nil {
			return nil, fmt.Errorf("invalid benefits payload: %w", err)
		}
	}
	offer.CounterNote = counterNote.String
	offer.LetterPath = letterPath.String

	return &offer, nil
}

func marshalComponents(offer *entity.Offer) (string, string, error) {
	allowances, err := json.Marshal(offer.Allowances)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal allowances: %w", err)
	}
	benefits, err := json.Marshal(offer.Benefits)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal benefits: %w", err)
	}
	return string(allowances), string(benefits), nil
}

// Verify interface compliance
var _ port.OfferRepository = (*OfferRepository)(nil)
