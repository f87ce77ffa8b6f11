package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = "id, student_id, pro_id, student_name, pro_name, date, start_time, end_time, status, paid_status, paid_at, paid_by, created_at, updated_at"

type CreateBookingInput struct {
	StudentID   int64
	ProID       int64
	StudentName string
	ProName     string
	Date        time.Time
	StartTime   string
	EndTime     string
}

type BookingListFilter struct {
	StudentID int64
	ProID     int64
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
}

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.ProID,
		&booking.StudentName,
		&booking.ProName,
		&booking.Date,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.PaidStatus,
		&booking.PaidAt,
		&booking.PaidBy,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (student_id, pro_id, student_name, pro_name, date, start_time, end_time, status, paid_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'scheduled', 'unpaid')
		RETURNING ` + bookingColumns
	return scanBooking(r.db.QueryRow(
		ctx,
		query,
		input.StudentID,
		input.ProID,
		input.StudentName,
		input.ProName,
		input.Date,
		input.StartTime,
		input.EndTime,
	))
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRow(ctx, query, bookingID))
}

func (r *BookingRepository) List(ctx context.Context, filter BookingListFilter) ([]models.Booking, error) {
	args := []any{}
	whereParts := []string{}

	if filter.StudentID > 0 {
		args = append(args, filter.StudentID)
		whereParts = append(whereParts, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.ProID > 0 {
		args = append(args, filter.ProID)
		whereParts = append(whereParts, fmt.Sprintf("pro_id = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		whereParts = append(whereParts, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		whereParts = append(whereParts, fmt.Sprintf("date <= $%d", len(args)))
	}

	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		%s
		ORDER BY date ASC, start_time ASC, id ASC
	`, bookingColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

// UpdateStatusIfCurrent applies the transition only when the row is still in
// the expected prior state; pgx.ErrNoRows signals a lost race or an already
// terminal booking.
func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	bookingID int64,
	currentStatus string,
	nextStatus string,
) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, currentStatus, nextStatus))
}

// SetPaidStatus tracks coach compensation, independent of the booking status
// machine and of the student ledger.
func (r *BookingRepository) SetPaidStatus(
	ctx context.Context,
	bookingID int64,
	paidStatus string,
	paidBy int64,
) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET paid_status = $2,
		    paid_at = CASE WHEN $2 = 'paid' THEN NOW() ELSE NULL END,
		    paid_by = CASE WHEN $2 = 'paid' THEN $3 ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns
	return scanBooking(r.db.QueryRow(ctx, query, bookingID, paidStatus, paidBy))
}
