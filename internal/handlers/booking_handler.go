package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
	"github.com/h-ogasawara/GolfSchoolBack/internal/services"
	"github.com/jackc/pgx/v5"
)

type bookingApplicationService interface {
	CreateBooking(ctx context.Context, input services.CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID int64) (*models.Booking, error)
	ListBookings(ctx context.Context, filter repository.BookingListFilter) ([]models.Booking, error)
	CompleteBooking(ctx context.Context, actorID int64, role string, bookingID int64) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64) (*models.Booking, error)
	SetPaidStatus(ctx context.Context, actorID int64, bookingID int64, paidStatus string) (*models.Booking, error)
}

type BookingHandler struct {
	service bookingApplicationService
}

func NewBookingHandler(service bookingApplicationService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingRequest struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	ProID     int64  `json:"pro_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
}

type paidStatusRequest struct {
	PaidStatus string `json:"paid_status" validate:"required,oneof=paid unpaid"`
}

const dateLayout = "2006-01-02"

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	booking, err := h.service.CreateBooking(c.Context(), services.CreateBookingInput{
		StudentID: req.StudentID,
		ProID:     req.ProID,
		Date:      date,
		StartTime: strings.TrimSpace(req.StartTime),
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	filter := repository.BookingListFilter{
		StudentID: int64(c.QueryInt("student_id")),
		ProID:     int64(c.QueryInt("pro_id")),
		Status:    strings.TrimSpace(c.Query("status")),
	}
	if from := strings.TrimSpace(c.Query("date_from")); from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_from must be YYYY-MM-DD"})
		}
		filter.DateFrom = &parsed
	}
	if to := strings.TrimSpace(c.Query("date_to")); to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_to must be YYYY-MM-DD"})
		}
		filter.DateTo = &parsed
	}

	// Coaches only see their own schedule.
	if role, ok := c.Locals("role").(string); ok && role == models.RoleCoach {
		proID, err := actorID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		filter.ProID = proID
	}

	bookings, err := h.service.ListBookings(c.Context(), filter)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"bookings": bookings})
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := h.service.GetBooking(c.Context(), bookingID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) CompleteBooking(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := h.service.CompleteBooking(c.Context(), userID, role, bookingID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := h.service.CancelBooking(c.Context(), bookingID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) SetPaidStatus(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req paidStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	booking, err := h.service.SetPaidStatus(c.Context(), userID, bookingID, req.PaidStatus)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"booking": booking})
}

func mapBookingError(c *fiber.Ctx, err error) error {
	var insufficientErr *services.InsufficientHoursError
	switch {
	case errors.As(err, &insufficientErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": insufficientErr.Error()})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking is not in a state that allows this transition"})
	case errors.Is(err, services.ErrStudentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	case errors.Is(err, services.ErrProNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process booking request"})
	}
}
