package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/h-ogasawara/GolfSchoolBack/internal/repository"
	"github.com/jackc/pgx/v5"
)

type CourseHandler struct {
	courseRepo *repository.CourseRepository
}

func NewCourseHandler(courseRepo *repository.CourseRepository) *CourseHandler {
	return &CourseHandler{courseRepo: courseRepo}
}

type createCourseRequest struct {
	Name  string  `json:"name" validate:"required"`
	Hours float64 `json:"hours" validate:"required,gt=0"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

type updateCourseRequest struct {
	Name   *string  `json:"name"`
	Hours  *float64 `json:"hours" validate:"omitempty,gt=0"`
	Price  *float64 `json:"price" validate:"omitempty,gt=0"`
	Active *bool    `json:"active"`
}

// ListActiveCourses backs the public portal's course picker.
func (h *CourseHandler) ListActiveCourses(c *fiber.Ctx) error {
	courses, err := h.courseRepo.List(c.Context(), true)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list courses"})
	}
	return c.JSON(fiber.Map{"courses": courses})
}

func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.courseRepo.List(c.Context(), false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list courses"})
	}
	return c.JSON(fiber.Map{"courses": courses})
}

func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req createCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	course, err := h.courseRepo.Create(c.Context(), strings.TrimSpace(req.Name), req.Hours, req.Price)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"course": course})
}

func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}

	var req updateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	course, err := h.courseRepo.Update(c.Context(), courseID, repository.UpdateCourseInput{
		Name:   req.Name,
		Hours:  req.Hours,
		Price:  req.Price,
		Active: req.Active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update course"})
	}

	return c.JSON(fiber.Map{"course": course})
}
