package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

// SalaryBandRepository implements port.SalaryBandRepository
type SalaryBandRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSalaryBandRepository creates a new salary band repository
func NewSalaryBandRepository(db *sql.DB, logger *zap.Logger) port.SalaryBandRepository {
	return &SalaryBandRepository{
		db:     db,
		logger: logger,
	}
}

// GetByCountryGrade retrieves the band for a (country, grade) pair, nil when
// no band is configured
func (r *SalaryBandRepository) GetByCountryGrade(ctx context.Context, country, grade string) (*entity.SalaryBand, error) {
	query := `
		SELECT id, country, grade, min_amount, max_amount
		FROM salary_bands
		WHERE country = ? AND grade = ?
	`

	band, err := scanSalaryBand(getExecutor(ctx, r.db).QueryRowContext(ctx, query, country, grade))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get salary band",
			zap.String("country", country), zap.String("grade", grade), zap.Error(err))
		return nil, fmt.Errorf("failed to get salary band: %w", err)
	}

	return band, nil
}

// List retrieves all configured salary bands
func (r *SalaryBandRepository) List(ctx context.Context) ([]*entity.SalaryBand, error) {
	query := `
		SELECT id, country, grade, min_amount, max_amount
		FROM salary_bands
		ORDER BY country, grade
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list salary bands", zap.Error(err))
		return nil, fmt.Errorf("failed to list salary bands: %w", err)
	}
	defer rows.Close()

	var bands []*entity.SalaryBand
	for rows.Next() {
		band, err := scanSalaryBand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary band: %w", err)
		}
		bands = append(bands, band)
	}

	return bands, rows.Err()
}

func scanSalaryBand(row rowScanner) (*entity.SalaryBand, error) {
	var (
		band entity.SalaryBand
		min  string
		max  string
	)

	if err := row.Scan(&band.ID, &band.Country, &band.Grade, &min, &max); err != nil {
		return nil, err
	}

	var err error
	if band.MinAmount, err = decimal.NewFromString(min); err != nil {
		return nil, fmt.Errorf("invalid min amount %q: %w", min, err)
	}
	if band.MaxAmount, err = decimal.NewFromString(max); err != nil {
		return nil, fmt.Errorf("invalid max amount %q: %w", max, err)
	}

	return &band, nil
}

// Verify interface compliance
var _ port.SalaryBandRepository = (*SalaryBandRepository)(nil)
