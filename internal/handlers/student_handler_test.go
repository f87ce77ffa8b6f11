package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
)

type stubStudentStore struct {
	students   []models.User
	total      int
	listErr    error
	lastLimit  int
	lastOffset int
}

func (s *stubStudentStore) CreateStudent(_ context.Context, input repository.CreateStudentInput) (*models.User, error) {
	return &models.User{Role: models.RoleStudent, Name: input.Name}, nil
}

func (s *stubStudentStore) ListStudents(_ context.Context, limit, offset int) ([]models.User, int, error) {
	s.lastLimit = limit
	s.lastOffset = offset
	return s.students, s.total, s.listErr
}

func (s *stubStudentStore) ListByRole(_ context.Context, _ string) ([]models.User, error) {
	return nil, nil
}

func (s *stubStudentStore) GetByID(_ context.Context, _ int64) (*models.User, error) {
	return nil, nil
}

func (s *stubStudentStore) UpdateStudent(_ context.Context, _ int64, _ repository.UpdateStudentInput) (*models.User, error) {
	return nil, nil
}

func newStudentListTestApp(store *stubStudentStore) *fiber.App {
	handler := NewStudentHandler(store, nil, nil)

	app := fiber.New()
	app.Get("/api/v1/students", handler.ListStudents)
	return app
}

func TestListStudentsPushesPagingIntoQuery(t *testing.T) {
	store := &stubStudentStore{
		students: []models.User{{ID: 31, Role: models.RoleStudent, Name: "Page Two Student"}},
		total:    57,
	}
	app := newStudentListTestApp(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students?page=3&limit=20", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if store.lastLimit != 20 || store.lastOffset != 40 {
		t.Fatalf("expected limit 20 offset 40, got limit %d offset %d", store.lastLimit, store.lastOffset)
	}

	var payload struct {
		Students   []map[string]any      `json:"students"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Pagination.Total != 57 || payload.Pagination.Page != 3 || payload.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination meta: %+v", payload.Pagination)
	}
	if len(payload.Students) != 1 {
		t.Fatalf("expected the repository page to pass through, got %d rows", len(payload.Students))
	}
}

func TestListStudentsClampsAndDefaultsPaging(t *testing.T) {
	store := &stubStudentStore{}
	app := newStudentListTestApp(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students?page=-2&limit=9999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if store.lastLimit != maxPageLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxPageLimit, store.lastLimit)
	}
	if store.lastOffset != 0 {
		t.Fatalf("expected invalid page to fall back to offset 0, got %d", store.lastOffset)
	}
}
