package models

import "time"

const (
	RoleOwner   = "owner"
	RoleCoach   = "coach"
	RoleStudent = "student"
)

// User rows carry all three roles. Owners and coaches authenticate with
// email+password; students never do and instead carry the LINE identity set.
type User struct {
	ID           int64     `json:"id"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"phone,omitempty"`
	Level        *string   `json:"level,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	LineUserIDs  []string  `json:"line_user_ids"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsStaff() bool {
	return u.Role == RoleOwner || u.Role == RoleCoach
}

func (u *User) HasLineUserID(lineUserID string) bool {
	for _, id := range u.LineUserIDs {
		if id == lineUserID {
			return true
		}
	}
	return false
}
