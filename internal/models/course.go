package models

import "time"

type Course struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Hours     float64   `json:"hours"`
	Price     float64   `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
