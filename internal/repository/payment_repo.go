package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = "id, student_id, course_id, amount, receipt_image_url, hours_added, status, reviewed_by, reviewed_at, created_at"

type CreatePaymentInput struct {
	StudentID       int64
	CourseID        int64
	Amount          float64
	ReceiptImageURL string
	HoursAdded      float64
}

type PaymentListFilter struct {
	StudentID int64
	Status    string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var payment models.Payment
	err := row.Scan(
		&payment.ID,
		&payment.StudentID,
		&payment.CourseID,
		&payment.Amount,
		&payment.ReceiptImageURL,
		&payment.HoursAdded,
		&payment.Status,
		&payment.ReviewedBy,
		&payment.ReviewedAt,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	query := `
		INSERT INTO payments (student_id, course_id, amount, receipt_image_url, hours_added, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(
		ctx,
		query,
		input.StudentID,
		input.CourseID,
		input.Amount,
		input.ReceiptImageURL,
		input.HoursAdded,
	))
}

func (r *PaymentRepository) GetByID(ctx context.Context, paymentID int64) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.db.QueryRow(ctx, query, paymentID))
}

func (r *PaymentRepository) List(ctx context.Context, filter PaymentListFilter) ([]models.Payment, error) {
	args := []any{}
	whereParts := []string{}

	if filter.StudentID > 0 {
		args = append(args, filter.StudentID)
		whereParts = append(whereParts, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		%s
		ORDER BY created_at DESC, id DESC
	`, paymentColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	return payments, rows.Err()
}

// ReviewIfPending moves a pending payment to a terminal state and stamps the
// reviewer in the same statement; pgx.ErrNoRows means the payment was
// already reviewed (or never existed).
func (r *PaymentRepository) ReviewIfPending(
	ctx context.Context,
	paymentID int64,
	nextStatus string,
	reviewedBy int64,
) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = $2, reviewed_by = $3, reviewed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(ctx, query, paymentID, nextStatus, reviewedBy))
}
