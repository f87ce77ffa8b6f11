package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/h-ogasawara/GolfSchoolBack/internal/metrics"
	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrStudentNotFound        = errors.New("student not found")
	ErrProNotFound            = errors.New("coach not found")
)

// InsufficientHoursError carries the current balance so the rejection can
// tell staff how many hours the student actually has left.
type InsufficientHoursError struct {
	RemainingHours float64
}

func (e *InsufficientHoursError) Error() string {
	return fmt.Sprintf("insufficient remaining hours: %.1f left, 1 required", e.RemainingHours)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// LineNotifier pushes a message to one external messaging identity. Pushes
// run after the owning transaction commits and are best-effort.
type LineNotifier interface {
	Push(ctx context.Context, lineUserID string, message string) error
}

type BookingService struct {
	db          *pgxpool.Pool
	bookingRepo *repository.BookingRepository
	ledgerRepo  *repository.LedgerRepository
	userRepo    userReader
	notifier    LineNotifier
	log         *slog.Logger
}

func NewBookingService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	ledgerRepo *repository.LedgerRepository,
	userRepo userReader,
	notifier LineNotifier,
	log *slog.Logger,
) *BookingService {
	return &BookingService{
		db:          db,
		bookingRepo: bookingRepo,
		ledgerRepo:  ledgerRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		log:         log,
	}
}

type CreateBookingInput struct {
	StudentID int64
	ProID     int64
	Date      time.Time
	StartTime string
}

const wallClockLayout = "15:04"

// lessonHours computes the debit from the stored wall-clock strings, never
// from elapsed real time. An end time earlier than the start means the
// lesson crossed midnight, so the difference wraps into the next day.
func lessonHours(startTime, endTime string) (float64, error) {
	start, err := time.Parse(wallClockLayout, startTime)
	if err != nil {
		return 0, err
	}
	end, err := time.Parse(wallClockLayout, endTime)
	if err != nil {
		return 0, err
	}
	d := end.Sub(start)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d.Hours(), nil
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if input.StudentID <= 0 || input.ProID <= 0 || input.Date.IsZero() {
		return nil, ErrInvalidInput
	}
	start, err := time.Parse(wallClockLayout, input.StartTime)
	if err != nil {
		return nil, ErrInvalidInput
	}
	// Lessons are one hour by construction.
	endTime := start.Add(time.Hour).Format(wallClockLayout)

	student, err := s.userRepo.GetByID(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}

	pro, err := s.userRepo.GetByID(ctx, input.ProID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProNotFound
		}
		return nil, err
	}
	if pro.Role != models.RoleCoach {
		return nil, ErrProNotFound
	}

	// Capacity guard. The read is not atomic with the eventual debit, so a
	// burst of creations at the boundary can overdraw; the ledger tolerates
	// the negative balance rather than reserving hours exclusively.
	ledger, err := s.ledgerRepo.Get(ctx, input.StudentID)
	if err != nil {
		return nil, err
	}
	if ledger.RemainingHours < 1 {
		return nil, &InsufficientHoursError{RemainingHours: ledger.RemainingHours}
	}

	return s.bookingRepo.Create(ctx, repository.CreateBookingInput{
		StudentID:   input.StudentID,
		ProID:       input.ProID,
		StudentName: student.Name,
		ProName:     pro.Name,
		Date:        input.Date,
		StartTime:   start.Format(wallClockLayout),
		EndTime:     endTime,
	})
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	return s.bookingRepo.GetByID(ctx, bookingID)
}

func (s *BookingService) ListBookings(ctx context.Context, filter repository.BookingListFilter) ([]models.Booking, error) {
	return s.bookingRepo.List(ctx, filter)
}

// CompleteBooking moves scheduled -> completed and debits the ledger in one
// transaction. The CAS on the status row makes repeated completion calls a
// conflict instead of a second debit.
func (s *BookingService) CompleteBooking(ctx context.Context, actorID int64, role string, bookingID int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleCoach && booking.ProID != actorID {
		return nil, ErrForbidden
	}
	if role != models.RoleCoach && role != models.RoleOwner {
		return nil, ErrForbidden
	}

	hours, err := lessonHours(booking.StartTime, booking.EndTime)
	if err != nil || hours <= 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	txLedgerRepo := repository.NewLedgerRepository(tx)

	updated, err := txBookingRepo.UpdateStatusIfCurrent(ctx, bookingID, models.BookingStatusScheduled, models.BookingStatusCompleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if _, err := txLedgerRepo.Debit(ctx, booking.StudentID, hours); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.BookingsCompleted.Inc()
	metrics.LedgerHoursDebited.Add(hours)
	s.notifyStudent(ctx, booking.StudentID, fmt.Sprintf(
		"%sのレッスンが完了しました。%.1f時間を使用しました。",
		booking.Date.Format("1月2日"), hours,
	))

	return updated, nil
}

// CancelBooking needs no ledger work: a scheduled booking never debited
// hours. Completed and cancelled bookings are terminal.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	updated, err := s.bookingRepo.UpdateStatusIfCurrent(ctx, bookingID, models.BookingStatusScheduled, models.BookingStatusCancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.bookingRepo.GetByID(ctx, bookingID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	metrics.BookingsCancelled.Inc()
	return updated, nil
}

func (s *BookingService) SetPaidStatus(ctx context.Context, actorID int64, bookingID int64, paidStatus string) (*models.Booking, error) {
	if paidStatus != models.BookingPaidStatusPaid && paidStatus != models.BookingPaidStatusUnpaid {
		return nil, ErrInvalidInput
	}
	return s.bookingRepo.SetPaidStatus(ctx, bookingID, paidStatus, actorID)
}

func (s *BookingService) notifyStudent(ctx context.Context, studentID int64, message string) {
	if s.notifier == nil {
		return
	}
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		s.log.Warn("load student for push failed", "student_id", studentID, "err", err)
		return
	}
	for _, lineUserID := range student.LineUserIDs {
		if err := s.notifier.Push(ctx, lineUserID, message); err != nil {
			s.log.Warn("line push failed", "line_user_id", lineUserID, "err", err)
		}
	}
}
