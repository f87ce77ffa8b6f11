package models

import "time"

const (
	BookingStatusScheduled = "scheduled"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"

	BookingPaidStatusPaid   = "paid"
	BookingPaidStatusUnpaid = "unpaid"
)

// Booking is a single one-hour lesson. StartTime/EndTime are wall-clock
// "HH:MM" strings; EndTime is always derived as StartTime plus one hour.
// StudentName/ProName are denormalized at creation time and not kept in
// sync with later renames.
type Booking struct {
	ID          int64      `json:"id"`
	StudentID   int64      `json:"student_id"`
	ProID       int64      `json:"pro_id"`
	StudentName string     `json:"student_name"`
	ProName     string     `json:"pro_name"`
	Date        time.Time  `json:"date"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Status      string     `json:"status"`
	PaidStatus  string     `json:"paid_status"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	PaidBy      *int64     `json:"paid_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
