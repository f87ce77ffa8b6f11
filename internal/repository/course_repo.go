package repository

import (
	"context"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/jackc/pgx/v5"
)

const courseColumns = "id, name, hours, price, active, created_at, updated_at"

type CourseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	err := row.Scan(
		&course.ID,
		&course.Name,
		&course.Hours,
		&course.Price,
		&course.Active,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Create(ctx context.Context, name string, hours, price float64) (*models.Course, error) {
	query := `
		INSERT INTO courses (name, hours, price, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING ` + courseColumns
	return scanCourse(r.db.QueryRow(ctx, query, name, hours, price))
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.db.QueryRow(ctx, query, id))
}

func (r *CourseRepository) List(ctx context.Context, activeOnly bool) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY price ASC, id ASC`
	if activeOnly {
		query = `SELECT ` + courseColumns + ` FROM courses WHERE active ORDER BY price ASC, id ASC`
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

type UpdateCourseInput struct {
	Name   *string
	Hours  *float64
	Price  *float64
	Active *bool
}

func (r *CourseRepository) Update(ctx context.Context, id int64, input UpdateCourseInput) (*models.Course, error) {
	query := `
		UPDATE courses
		SET name = COALESCE($2, name),
		    hours = COALESCE($3, hours),
		    price = COALESCE($4, price),
		    active = COALESCE($5, active),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + courseColumns
	return scanCourse(r.db.QueryRow(ctx, query, id, input.Name, input.Hours, input.Price, input.Active))
}
