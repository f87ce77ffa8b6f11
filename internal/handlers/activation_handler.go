package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/services"
)

type activationApplicationService interface {
	Activate(ctx context.Context, code, lineUserID, displayName string) (*models.User, error)
	ResolvePortalSession(ctx context.Context, lineUserID, displayName string) (*models.User, error)
}

// ActivationHandler serves the LINE Mini App portal. These routes are
// unauthenticated: the activation code and the LINE identity are the only
// credentials the portal has.
type ActivationHandler struct {
	service activationApplicationService
}

func NewActivationHandler(service activationApplicationService) *ActivationHandler {
	return &ActivationHandler{service: service}
}

type activateRequest struct {
	Code        string `json:"code" validate:"required"`
	LineUserID  string `json:"line_user_id" validate:"required"`
	DisplayName string `json:"display_name"`
}

type portalSessionRequest struct {
	LineUserID  string `json:"line_user_id" validate:"required"`
	DisplayName string `json:"display_name"`
}

func (h *ActivationHandler) Activate(c *fiber.Ctx) error {
	var req activateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	student, err := h.service.Activate(
		c.Context(),
		strings.TrimSpace(req.Code),
		strings.TrimSpace(req.LineUserID),
		strings.TrimSpace(req.DisplayName),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidActivationCode):
			// One generic message for every verification failure.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrInvalidActivationCode.Error()})
		case errors.Is(err, services.ErrStudentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		case errors.Is(err, services.ErrLinkedElsewhere):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This LINE account is already linked to another student"})
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to activate"})
		}
	}

	return c.JSON(fiber.Map{"student": student})
}

// PortalSession resolves the caller's LINE identity to a student on every
// portal load. Unlinked identities get a 404 and show up in the staff
// pending list.
func (h *ActivationHandler) PortalSession(c *fiber.Ctx) error {
	var req portalSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	student, err := h.service.ResolvePortalSession(
		c.Context(),
		strings.TrimSpace(req.LineUserID),
		strings.TrimSpace(req.DisplayName),
	)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve session"})
	}
	if student == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account is not activated yet"})
	}

	return c.JSON(fiber.Map{"student": student})
}
