package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/h-ogasawara/GolfSchoolBack/internal/metrics"
	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrAlreadyReviewed = errors.New("payment already reviewed")
)

type courseReader interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

type PaymentService struct {
	db          *pgxpool.Pool
	paymentRepo *repository.PaymentRepository
	userRepo    userReader
	courseRepo  courseReader
	notifier    LineNotifier
	log         *slog.Logger
}

func NewPaymentService(
	db *pgxpool.Pool,
	paymentRepo *repository.PaymentRepository,
	userRepo userReader,
	courseRepo courseReader,
	notifier LineNotifier,
	log *slog.Logger,
) *PaymentService {
	return &PaymentService{
		db:          db,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		courseRepo:  courseRepo,
		notifier:    notifier,
		log:         log,
	}
}

type SubmitPaymentInput struct {
	StudentID       int64
	CourseID        int64
	Amount          float64
	ReceiptImageURL string
}

// SubmitPayment captures the course's hour value at submission time. Later
// course edits must not change what an approval will credit.
func (s *PaymentService) SubmitPayment(ctx context.Context, input SubmitPaymentInput) (*models.Payment, error) {
	if input.StudentID <= 0 || input.CourseID <= 0 || input.Amount <= 0 || input.ReceiptImageURL == "" {
		return nil, ErrInvalidInput
	}

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

	course, err := s.courseRepo.GetByID(ctx, input.CourseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	return s.paymentRepo.Create(ctx, repository.CreatePaymentInput{
		StudentID:       input.StudentID,
		CourseID:        input.CourseID,
		Amount:          input.Amount,
		ReceiptImageURL: input.ReceiptImageURL,
		HoursAdded:      course.Hours,
	})
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, filter repository.PaymentListFilter) ([]models.Payment, error) {
	return s.paymentRepo.List(ctx, filter)
}

// ApprovePayment reviews and credits in one transaction. The CAS on the
// pending status guarantees a payment credits the ledger exactly once; a
// second approval call gets a conflict, never a second credit.
func (s *PaymentService) ApprovePayment(ctx context.Context, reviewerID int64, paymentID int64) (*models.Payment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)
	txLedgerRepo := repository.NewLedgerRepository(tx)

	payment, err := txPaymentRepo.ReviewIfPending(ctx, paymentID, models.PaymentStatusApproved, reviewerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.reviewConflict(ctx, paymentID)
		}
		return nil, err
	}

	if _, err := txLedgerRepo.Credit(ctx, payment.StudentID, payment.HoursAdded); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.PaymentsReviewed.WithLabelValues(models.PaymentStatusApproved).Inc()
	metrics.LedgerHoursCredited.Add(payment.HoursAdded)
	s.notifyStudent(ctx, payment.StudentID, fmt.Sprintf(
		"お支払いを確認しました。%.1f時間が追加されました。", payment.HoursAdded,
	))

	return payment, nil
}

func (s *PaymentService) RejectPayment(ctx context.Context, reviewerID int64, paymentID int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.ReviewIfPending(ctx, paymentID, models.PaymentStatusRejected, reviewerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.reviewConflict(ctx, paymentID)
		}
		return nil, err
	}
	metrics.PaymentsReviewed.WithLabelValues(models.PaymentStatusRejected).Inc()
	return payment, nil
}

// reviewConflict distinguishes a payment that does not exist from one that
// was already reviewed.
func (s *PaymentService) reviewConflict(ctx context.Context, paymentID int64) error {
	if _, err := s.paymentRepo.GetByID(ctx, paymentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPaymentNotFound
		}
		return err
	}
	return ErrAlreadyReviewed
}

func (s *PaymentService) notifyStudent(ctx context.Context, studentID int64, message string) {
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
