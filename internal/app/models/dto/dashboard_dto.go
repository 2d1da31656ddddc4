package dto

import (
	"github.com/yigit/tutorledger/internal/app/ledger"
	"github.com/yigit/tutorledger/internal/app/models"
)

// DashboardResponse is the landing view. Teachers get totals and the unpaid work list,
// parents only their own children.
type DashboardResponse struct {
	User           *UserResponse        `json:"user"`
	Totals         *ledger.GlobalTotals `json:"totals,omitempty"`
	Students       []StudentSummary     `json:"students"`
	UnpaidSessions []models.Session     `json:"unpaidSessions,omitempty"`
}
