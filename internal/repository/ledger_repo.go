package repository

import (
	"context"
	"errors"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository owns the per-student hour balance. Both mutations are
// single atomic statements: concurrent credits and debits for one student
// converge to the same sum regardless of interleaving, and a missing row is
// created in place with the delta applied. Handler code must never
// read-modify-write these columns.
type LedgerRepository struct {
	db DBTX
}

func NewLedgerRepository(db DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Credit(ctx context.Context, studentID int64, hours float64) (*models.HourLedger, error) {
	query := `
		INSERT INTO hour_ledgers (student_id, remaining_hours, total_hours_purchased, total_hours_used)
		VALUES ($1, $2, $2, 0)
		ON CONFLICT (student_id) DO UPDATE
		SET remaining_hours = hour_ledgers.remaining_hours + EXCLUDED.remaining_hours,
		    total_hours_purchased = hour_ledgers.total_hours_purchased + EXCLUDED.total_hours_purchased,
		    updated_at = NOW()
		RETURNING student_id, remaining_hours, total_hours_purchased, total_hours_used, updated_at
	`
	return scanLedger(r.db.QueryRow(ctx, query, studentID, hours))
}

func (r *LedgerRepository) Debit(ctx context.Context, studentID int64, hours float64) (*models.HourLedger, error) {
	query := `
		INSERT INTO hour_ledgers (student_id, remaining_hours, total_hours_purchased, total_hours_used)
		VALUES ($1, -$2, 0, $2)
		ON CONFLICT (student_id) DO UPDATE
		SET remaining_hours = hour_ledgers.remaining_hours - EXCLUDED.total_hours_used,
		    total_hours_used = hour_ledgers.total_hours_used + EXCLUDED.total_hours_used,
		    updated_at = NOW()
		RETURNING student_id, remaining_hours, total_hours_purchased, total_hours_used, updated_at
	`
	return scanLedger(r.db.QueryRow(ctx, query, studentID, hours))
}

// Get never errors on a missing row; an absent ledger reads as all zeros.
func (r *LedgerRepository) Get(ctx context.Context, studentID int64) (*models.HourLedger, error) {
	query := `
		SELECT student_id, remaining_hours, total_hours_purchased, total_hours_used, updated_at
		FROM hour_ledgers
		WHERE student_id = $1
	`
	ledger, err := scanLedger(r.db.QueryRow(ctx, query, studentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.HourLedger{StudentID: studentID}, nil
	}
	return ledger, err
}

func scanLedger(row pgx.Row) (*models.HourLedger, error) {
	var ledger models.HourLedger
	err := row.Scan(
		&ledger.StudentID,
		&ledger.RemainingHours,
		&ledger.TotalHoursPurchased,
		&ledger.TotalHoursUsed,
		&ledger.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}
