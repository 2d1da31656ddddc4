package models

import "time"

// DateLayout is the calendar date format used for session dates
const DateLayout = "2006-01-02"

// Session defines one tutoring occurrence based on the 'tutoring_sessions' table.
// Amount is fixed when the row is created; Paid is the only field that changes afterwards.
type Session struct {
	ID              int64     `json:"id" db:"id" example:"10"`
	StudentID       int64     `json:"studentId" db:"student_id" example:"1"`
	Date            time.Time `json:"date" db:"session_date" example:"2024-03-14T00:00:00Z"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes" example:"60"`
	Amount          Money     `json:"amount" db:"amount_cents" swaggertype:"number" example:"25.50"`
	Subject         string    `json:"subject,omitempty" db:"subject" example:"Mathematics"`
	Paid            bool      `json:"paid" db:"paid" example:"false"`
	Notes           string    `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	StudentName     string    `json:"studentName,omitempty"` // Filled by joined listings, no db column
}
