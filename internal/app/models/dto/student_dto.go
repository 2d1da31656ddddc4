package dto

import (
	"github.com/yigit/tutorledger/internal/app/ledger"
	"github.com/yigit/tutorledger/internal/app/models"
)

// CreateStudentRequest is sent by a teacher to add a student
type CreateStudentRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=200" example:"Sophie Martin"`
	ParentEmail  string `json:"parentEmail" binding:"required,email" example:"parent@example.com"`
	DefaultPrice string `json:"defaultPrice" binding:"money" example:"25.50"`
}

// UpdateStudentPriceRequest changes the price used for future sessions
type UpdateStudentPriceRequest struct {
	DefaultPrice string `json:"defaultPrice" binding:"required,money" example:"30.00"`
}

// StudentSummary is a student with its derived ledger
type StudentSummary struct {
	Student models.Student       `json:"student"`
	Ledger  ledger.StudentLedger `json:"ledger"`
}

// StudentDetailResponse is a student with its ledger and sessions, newest first
type StudentDetailResponse struct {
	Student  models.Student       `json:"student"`
	Parent   *UserResponse        `json:"parent,omitempty"`
	Ledger   ledger.StudentLedger `json:"ledger"`
	Sessions []models.Session     `json:"sessions"`
}

// CreateStudentResponse reports the created student and, in auto-provision mode,
// the parent account created along with it
type CreateStudentResponse struct {
	Student           models.Student         `json:"student"`
	ProvisionedParent *ParentAccountResponse `json:"provisionedParent,omitempty"`
}
