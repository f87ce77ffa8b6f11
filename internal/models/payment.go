package models

import "time"

const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// Payment is a manually reviewed proof-of-payment for a course package.
// HoursAdded is captured from the course at submission time so later course
// edits never change an already-pending credit.
type Payment struct {
	ID              int64      `json:"id"`
	StudentID       int64      `json:"student_id"`
	CourseID        int64      `json:"course_id"`
	Amount          float64    `json:"amount"`
	ReceiptImageURL string     `json:"receipt_image_url"`
	HoursAdded      float64    `json:"hours_added"`
	Status          string     `json:"status"`
	ReviewedBy      *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
