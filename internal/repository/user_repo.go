package repository

import (
	"context"

	"github.com/h-ogasawara/GolfSchoolBack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = "id, role, name, email, password_hash, phone, level, notes, line_user_ids, created_at, updated_at"

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Role,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.Level,
		&user.Notes,
		&user.LineUserIDs,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CreateStaff(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (role, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, user.Role, user.Name, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

type CreateStudentInput struct {
	Name  string
	Email *string
	Phone *string
	Level *string
	Notes *string
}

func (r *UserRepository) CreateStudent(ctx context.Context, input CreateStudentInput) (*models.User, error) {
	query := `
		INSERT INTO users (role, name, email, phone, level, notes)
		VALUES ('student', $1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, input.Name, input.Email, input.Phone, input.Level, input.Notes))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY name ASC, id ASC`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) ListStudents(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	totalQuery := `SELECT COUNT(*) FROM users WHERE role = 'student'`

	var total int
	if err := r.db.QueryRow(ctx, totalQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'student'
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := make([]models.User, 0)
	for rows.Next() {
		student, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, *student)
	}
	return students, total, rows.Err()
}

type UpdateStudentInput struct {
	Name  *string
	Email *string
	Phone *string
	Level *string
	Notes *string
}

func (r *UserRepository) UpdateStudent(ctx context.Context, id int64, input UpdateStudentInput) (*models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    phone = COALESCE($4, phone),
		    level = COALESCE($5, level),
		    notes = COALESCE($6, notes),
		    updated_at = NOW()
		WHERE id = $1 AND role = 'student'
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, input.Name, input.Email, input.Phone, input.Level, input.Notes))
}

// AddLineUserID appends the external identity to the student's set unless it
// is already present. Returns true when a row was mutated.
func (r *UserRepository) AddLineUserID(ctx context.Context, studentID int64, lineUserID string) (bool, error) {
	query := `
		UPDATE users
		SET line_user_ids = array_append(line_user_ids, $2), updated_at = NOW()
		WHERE id = $1 AND role = 'student' AND NOT (line_user_ids @> ARRAY[$2])
	`
	tag, err := r.db.Exec(ctx, query, studentID, lineUserID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveLineUserID is a no-op when the identity was never linked.
func (r *UserRepository) RemoveLineUserID(ctx context.Context, studentID int64, lineUserID string) (bool, error) {
	query := `
		UPDATE users
		SET line_user_ids = array_remove(line_user_ids, $2), updated_at = NOW()
		WHERE id = $1 AND line_user_ids @> ARRAY[$2]
	`
	tag, err := r.db.Exec(ctx, query, studentID, lineUserID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) GetByLineUserID(ctx context.Context, lineUserID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE $1 = ANY(line_user_ids)`
	return scanUser(r.db.QueryRow(ctx, query, lineUserID))
}

func (r *UserRepository) ListLinkedLineUserIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT unnest(line_user_ids) FROM users`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
