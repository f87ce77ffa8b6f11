package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
	"github.com/h-ogasawara/GolfSchoolBack/internal/services"
)

type paymentApplicationService interface {
	SubmitPayment(ctx context.Context, input services.SubmitPaymentInput) (*models.Payment, error)
	GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error)
	ListPayments(ctx context.Context, filter repository.PaymentListFilter) ([]models.Payment, error)
	ApprovePayment(ctx context.Context, reviewerID int64, paymentID int64) (*models.Payment, error)
	RejectPayment(ctx context.Context, reviewerID int64, paymentID int64) (*models.Payment, error)
}

type PaymentHandler struct {
	service paymentApplicationService
	storage services.StorageService
}

func NewPaymentHandler(service paymentApplicationService, storage services.StorageService) *PaymentHandler {
	return &PaymentHandler{service: service, storage: storage}
}

type submitPaymentRequest struct {
	StudentID       int64   `json:"student_id" validate:"required,gt=0"`
	CourseID        int64   `json:"course_id" validate:"required,gt=0"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	ReceiptImageURL string  `json:"receipt_image_url" validate:"required,url"`
}

// SubmitPayment is deliberately unauthenticated: the student portal
// self-scopes by student_id, and nothing is credited until staff review.
func (h *PaymentHandler) SubmitPayment(c *fiber.Ctx) error {
	var req submitPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	payment, err := h.service.SubmitPayment(c.Context(), services.SubmitPaymentInput{
		StudentID:       req.StudentID,
		CourseID:        req.CourseID,
		Amount:          req.Amount,
		ReceiptImageURL: strings.TrimSpace(req.ReceiptImageURL),
	})
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment": payment})
}

// UploadReceipt stores a receipt image and returns its public URL for a
// following SubmitPayment call.
func (h *PaymentHandler) UploadReceipt(c *fiber.Ctx) error {
	if h.storage == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Receipt storage is not configured"})
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "receipt file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read receipt file"})
	}
	defer file.Close()

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	url, err := h.storage.UploadFile(c.Context(), file, filename, "receipts")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store receipt"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"receipt_image_url": url})
}

func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.service.ListPayments(c.Context(), repository.PaymentListFilter{
		StudentID: int64(c.QueryInt("student_id")),
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.JSON(fiber.Map{"payments": payments})
}

func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	payment, err := h.service.GetPayment(c.Context(), paymentID)
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}

func (h *PaymentHandler) ApprovePayment(c *fiber.Ctx) error {
	reviewerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	payment, err := h.service.ApprovePayment(c.Context(), reviewerID, paymentID)
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}

func (h *PaymentHandler) RejectPayment(c *fiber.Ctx) error {
	reviewerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	payment, err := h.service.RejectPayment(c.Context(), reviewerID, paymentID)
	if err != nil {
		return mapPaymentError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}

func mapPaymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyReviewed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Payment has already been reviewed"})
	case errors.Is(err, services.ErrPaymentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	case errors.Is(err, services.ErrStudentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	case errors.Is(err, services.ErrCourseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payment request"})
	}
}
