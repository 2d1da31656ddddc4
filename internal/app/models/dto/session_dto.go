package dto

import (
	"github.com/yigit/tutorledger/internal/app/ledger"
	"github.com/yigit/tutorledger/internal/app/models"
)

// CreateSessionRequest logs a tutoring session. A blank amount uses the student's default price.
type CreateSessionRequest struct {
	StudentID       int64  `json:"studentId" binding:"required,gt=0" example:"1"`
	Date            string `json:"date" binding:"required" example:"2024-03-14"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,gt=0,max=1440" example:"60"`
	Amount          string `json:"amount" binding:"money" example:"25.50"`
	Subject         string `json:"subject" binding:"max=100" example:"Mathematics"`
	Notes           string `json:"notes" binding:"max=2000"`
}

// SessionLedgerResponse is a session together with its student's ledger after a change
type SessionLedgerResponse struct {
	Session models.Session       `json:"session"`
	Ledger  ledger.StudentLedger `json:"ledger"`
}
