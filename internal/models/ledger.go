package models

import "time"

// HourLedger is the per-student running balance of teaching hours. It is
// mutated only through atomic increments: payment approval credits it,
// booking completion debits it. remaining = purchased - used is maintained
// by construction, never recomputed from history.
type HourLedger struct {
	StudentID           int64     `json:"student_id"`
	RemainingHours      float64   `json:"remaining_hours"`
	TotalHoursPurchased float64   `json:"total_hours_purchased"`
	TotalHoursUsed      float64   `json:"total_hours_used"`
	UpdatedAt           time.Time `json:"updated_at"`
}
