package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/services"
)

type pendingIdentityLister interface {
	ListUnlinked(ctx context.Context) ([]models.PendingLineIdentity, error)
}

type PendingHandler struct {
	service pendingIdentityLister
}

func NewPendingHandler(service *services.PendingIdentityService) *PendingHandler {
	return &PendingHandler{service: service}
}

func (h *PendingHandler) ListUnlinked(c *fiber.Ctx) error {
	pending, err := h.service.ListUnlinked(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list pending accounts"})
	}

	return c.JSON(fiber.Map{"pending": pending})
}
