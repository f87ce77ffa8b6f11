package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
	"github.com/h-ogasawara/GolfSchoolBack/internal/services"
)

type stubBookingService struct {
	createResult    *models.Booking
	createErr       error
	getResult       *models.Booking
	getErr          error
	listResult      []models.Booking
	listErr         error
	completeResult  *models.Booking
	completeErr     error
	cancelResult    *models.Booking
	cancelErr       error
	paidResult      *models.Booking
	paidErr         error
	lastCreateInput services.CreateBookingInput
	lastActorID     int64
	lastRole        string
	lastBookingID   int64
	lastFilter      repository.BookingListFilter
	lastPaidStatus  string
}

func (s *stubBookingService) CreateBooking(_ context.Context, input services.CreateBookingInput) (*models.Booking, error) {
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubBookingService) GetBooking(_ context.Context, bookingID int64) (*models.Booking, error) {
	s.lastBookingID = bookingID
	return s.getResult, s.getErr
}

func (s *stubBookingService) ListBookings(_ context.Context, filter repository.BookingListFilter) ([]models.Booking, error) {
	s.lastFilter = filter
	return s.listResult, s.listErr
}

func (s *stubBookingService) CompleteBooking(_ context.Context, actorID int64, role string, bookingID int64) (*models.Booking, error) {
	s.lastActorID = actorID
	s.lastRole = role
	s.lastBookingID = bookingID
	return s.completeResult, s.completeErr
}

func (s *stubBookingService) CancelBooking(_ context.Context, bookingID int64) (*models.Booking, error) {
	s.lastBookingID = bookingID
	return s.cancelResult, s.cancelErr
}

func (s *stubBookingService) SetPaidStatus(_ context.Context, actorID int64, bookingID int64, paidStatus string) (*models.Booking, error) {
	s.lastActorID = actorID
	s.lastBookingID = bookingID
	s.lastPaidStatus = paidStatus
	return s.paidResult, s.paidErr
}

func newBookingTestApp(service *stubBookingService, role string, userID string) *fiber.App {
	handler := NewBookingHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/bookings", handler.CreateBooking)
	app.Get("/api/v1/bookings", handler.ListBookings)
	app.Get("/api/v1/bookings/:id", handler.GetBooking)
	app.Patch("/api/v1/bookings/:id/complete", handler.CompleteBooking)
	app.Patch("/api/v1/bookings/:id/cancel", handler.CancelBooking)
	app.Patch("/api/v1/bookings/:id/paid-status", handler.SetPaidStatus)
	return app
}

func TestCreateBookingForwardsParsedInput(t *testing.T) {
	service := &stubBookingService{
		createResult: &models.Booking{ID: 11, StudentID: 5, ProID: 3, Status: "scheduled"},
	}
	app := newBookingTestApp(service, "owner", "1")

	body := bytes.NewBufferString(`{"student_id":5,"pro_id":3,"date":"2030-06-01","start_time":"10:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastCreateInput.StudentID != 5 || service.lastCreateInput.ProID != 3 {
		t.Fatalf("unexpected ids: %+v", service.lastCreateInput)
	}
	if service.lastCreateInput.StartTime != "10:00" {
		t.Fatalf("expected start 10:00, got %q", service.lastCreateInput.StartTime)
	}
	if got := service.lastCreateInput.Date.Format("2006-01-02"); got != "2030-06-01" {
		t.Fatalf("expected date 2030-06-01, got %q", got)
	}
}

func TestCreateBookingRejectsBadDate(t *testing.T) {
	service := &stubBookingService{}
	app := newBookingTestApp(service, "owner", "1")

	body := bytes.NewBufferString(`{"student_id":5,"pro_id":3,"date":"June 1st","start_time":"10:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateBookingInsufficientHoursConflict(t *testing.T) {
	service := &stubBookingService{
		createErr: &services.InsufficientHoursError{RemainingHours: 0.5},
	}
	app := newBookingTestApp(service, "owner", "1")

	body := bytes.NewBufferString(`{"student_id":5,"pro_id":3,"date":"2030-06-01","start_time":"10:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Error != "insufficient remaining hours: 0.5 left, 1 required" {
		t.Fatalf("expected balance in error message, got %q", payload.Error)
	}
}

func TestListBookingsScopesCoachToOwnSchedule(t *testing.T) {
	service := &stubBookingService{listResult: []models.Booking{}}
	app := newBookingTestApp(service, "coach", "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?pro_id=99", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter.ProID != 7 {
		t.Fatalf("expected coach filter forced to own id 7, got %d", service.lastFilter.ProID)
	}
}

func TestCompleteBookingForwardsActor(t *testing.T) {
	service := &stubBookingService{
		completeResult: &models.Booking{ID: 11, Status: "completed"},
	}
	app := newBookingTestApp(service, "coach", "7")

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/11/complete", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != 7 || service.lastRole != "coach" || service.lastBookingID != 11 {
		t.Fatalf("unexpected forwarding: actor=%d role=%q booking=%d",
			service.lastActorID, service.lastRole, service.lastBookingID)
	}
}

func TestCompleteBookingConflictOnTerminalState(t *testing.T) {
	service := &stubBookingService{completeErr: services.ErrInvalidStateTransition}
	app := newBookingTestApp(service, "owner", "1")

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/11/complete", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestGetBookingNotFound(t *testing.T) {
	service := &stubBookingService{getErr: pgx.ErrNoRows}
	app := newBookingTestApp(service, "owner", "1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/404", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSetPaidStatusValidatesValue(t *testing.T) {
	service := &stubBookingService{
		paidResult: &models.Booking{ID: 11, PaidStatus: "paid"},
	}
	app := newBookingTestApp(service, "owner", "1")

	body := bytes.NewBufferString(`{"paid_status":"refunded"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/11/paid-status", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body = bytes.NewBufferString(`{"paid_status":"paid"}`)
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/11/paid-status", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastPaidStatus != "paid" || service.lastActorID != 1 {
		t.Fatalf("unexpected forwarding: status=%q actor=%d", service.lastPaidStatus, service.lastActorID)
	}
}
