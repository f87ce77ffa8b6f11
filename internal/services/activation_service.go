package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/h-ogasawara/GolfSchoolBack/internal/metrics"
	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLinkedElsewhere rejects linking an external identity that already
// belongs to a different student. One LINE account, at most one student.
var ErrLinkedElsewhere = errors.New("line account is already linked to another student")

type activationCodec interface {
	Issue(studentID int64, studentName string) (string, error)
	Verify(code string) (int64, string, error)
}

// ActivationService owns the identity link registry: issuing activation
// codes, redeeming them from the LINE portal, and manual link/unlink by
// staff. A student may hold several LINE identities; an identity belongs to
// at most one student.
type ActivationService struct {
	db            *pgxpool.Pool
	userRepo      *repository.UserRepository
	lineEventRepo *repository.LineEventRepository
	codec         activationCodec
	log           *slog.Logger
}

func NewActivationService(
	db *pgxpool.Pool,
	userRepo *repository.UserRepository,
	lineEventRepo *repository.LineEventRepository,
	codec activationCodec,
	log *slog.Logger,
) *ActivationService {
	return &ActivationService{
		db:            db,
		userRepo:      userRepo,
		lineEventRepo: lineEventRepo,
		codec:         codec,
		log:           log,
	}
}

func (s *ActivationService) IssueCode(ctx context.Context, studentID int64) (string, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrStudentNotFound
		}
		return "", err
	}
	if student.Role != models.RoleStudent {
		return "", ErrStudentNotFound
	}
	return s.codec.Issue(student.ID, student.Name)
}

// Activate redeems an activation code scanned from LINE. The same code may
// be redeemed by any number of distinct identities; re-redeeming from an
// already linked identity is a success, not an error.
func (s *ActivationService) Activate(ctx context.Context, code, lineUserID, displayName string) (*models.User, error) {
	if lineUserID == "" {
		return nil, ErrInvalidInput
	}

	studentID, _, err := s.codec.Verify(code)
	if err != nil {
		return nil, err
	}

	student, err := s.Link(ctx, studentID, lineUserID)
	if err != nil {
		return nil, err
	}

	// Observation log only; a failure here must not undo the link.
	if err := s.lineEventRepo.UpsertPortalVisit(ctx, lineUserID, displayName); err != nil {
		s.log.Warn("record portal visit failed", "line_user_id", lineUserID, "err", err)
	}

	return student, nil
}

// Link adds the identity to the student's set. The advisory lock on the
// external id serializes concurrent link attempts so the at-most-one-owner
// rule holds even under races.
func (s *ActivationService) Link(ctx context.Context, studentID int64, lineUserID string) (*models.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", lineUserID); err != nil {
		return nil, err
	}

	txUserRepo := repository.NewUserRepository(tx)

	student, err := txUserRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}

	owner, err := txUserRepo.GetByLineUserID(ctx, lineUserID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if owner != nil && owner.ID != studentID {
		return nil, ErrLinkedElsewhere
	}
	if owner != nil {
		// Already linked to this student; idempotent success.
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return owner, nil
	}

	if _, err := txUserRepo.AddLineUserID(ctx, studentID, lineUserID); err != nil {
		return nil, err
	}
	student, err = txUserRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.ActivationsLinked.Inc()
	return student, nil
}

// Unlink is idempotent: removing an identity that was never linked is a
// no-op success.
func (s *ActivationService) Unlink(ctx context.Context, studentID int64, lineUserID string) (*models.User, error) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}

	if _, err := s.userRepo.RemoveLineUserID(ctx, studentID, lineUserID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, studentID)
}

// ResolvePortalSession maps a LINE identity to its student on every portal
// load, recording the visit either way so unlinked visitors surface in the
// pending list. Returns nil without error when the identity is unlinked.
func (s *ActivationService) ResolvePortalSession(ctx context.Context, lineUserID, displayName string) (*models.User, error) {
	if lineUserID == "" {
		return nil, ErrInvalidInput
	}

	if err := s.lineEventRepo.UpsertPortalVisit(ctx, lineUserID, displayName); err != nil {
		s.log.Warn("record portal visit failed", "line_user_id", lineUserID, "err", err)
	}

	student, err := s.userRepo.GetByLineUserID(ctx, lineUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return student, nil
}
