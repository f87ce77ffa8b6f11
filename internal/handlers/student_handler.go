package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
	"github.com/h-ogasawara/GolfSchoolBack/internal/services"
	"github.com/jackc/pgx/v5"
)

type identityLinkService interface {
	IssueCode(ctx context.Context, studentID int64) (string, error)
	Link(ctx context.Context, studentID int64, lineUserID string) (*models.User, error)
	Unlink(ctx context.Context, studentID int64, lineUserID string) (*models.User, error)
}

type studentStore interface {
	CreateStudent(ctx context.Context, input repository.CreateStudentInput) (*models.User, error)
	ListStudents(ctx context.Context, limit, offset int) ([]models.User, int, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateStudent(ctx context.Context, id int64, input repository.UpdateStudentInput) (*models.User, error)
}

type StudentHandler struct {
	userRepo   studentStore
	ledgerRepo *repository.LedgerRepository
	links      identityLinkService
}

func NewStudentHandler(
	userRepo studentStore,
	ledgerRepo *repository.LedgerRepository,
	links identityLinkService,
) *StudentHandler {
	return &StudentHandler{userRepo: userRepo, ledgerRepo: ledgerRepo, links: links}
}

type createStudentRequest struct {
	Name  string  `json:"name" validate:"required"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
	Level *string `json:"level"`
	Notes *string `json:"notes"`
}

type updateStudentRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
	Level *string `json:"level"`
	Notes *string `json:"notes"`
}

type linkLineRequest struct {
	LineUserID string `json:"line_user_id" validate:"required"`
}

func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req createStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	student, err := h.userRepo.CreateStudent(c.Context(), repository.CreateStudentInput{
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
		Phone: req.Phone,
		Level: req.Level,
		Notes: req.Notes,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create student"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	students, total, err := h.userRepo.ListStudents(c.Context(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list students"})
	}

	return c.JSON(fiber.Map{
		"students":   students,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	student, err := h.userRepo.GetByID(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load student"})
	}
	if student.Role != models.RoleStudent {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	ledger, err := h.ledgerRepo.Get(c.Context(), studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load ledger"})
	}

	return c.JSON(fiber.Map{"student": student, "ledger": ledger})
}

func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var req updateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	student, err := h.userRepo.UpdateStudent(c.Context(), studentID, repository.UpdateStudentInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Level: req.Level,
		Notes: req.Notes,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update student"})
	}

	return c.JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) GetLedger(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	ledger, err := h.ledgerRepo.Get(c.Context(), studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load ledger"})
	}

	return c.JSON(fiber.Map{"ledger": ledger})
}

// IssueActivationCode returns the raw signed code; the console renders it
// as a QR image for the student to scan from LINE.
func (h *StudentHandler) IssueActivationCode(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	code, err := h.links.IssueCode(c.Context(), studentID)
	if err != nil {
		return mapLinkError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"activation_code": code})
}

func (h *StudentHandler) LinkLine(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var req linkLineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	student, err := h.links.Link(c.Context(), studentID, strings.TrimSpace(req.LineUserID))
	if err != nil {
		return mapLinkError(c, err)
	}

	return c.JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) UnlinkLine(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	lineUserID := strings.TrimSpace(c.Params("lineUserId"))
	if lineUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid line user id"})
	}

	student, err := h.links.Unlink(c.Context(), studentID, lineUserID)
	if err != nil {
		return mapLinkError(c, err)
	}

	return c.JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) ListCoaches(c *fiber.Ctx) error {
	coaches, err := h.userRepo.ListByRole(c.Context(), models.RoleCoach)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list coaches"})
	}

	return c.JSON(fiber.Map{"coaches": coaches})
}

func mapLinkError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrStudentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	case errors.Is(err, services.ErrLinkedElsewhere):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This LINE account is already linked to another student"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process link request"})
	}
}
