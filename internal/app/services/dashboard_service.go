package services

import (
	"context"
	"fmt"

	"github.com/yigit/tutorledger/internal/app/auth"
	"github.com/yigit/tutorledger/internal/app/ledger"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/app/repositories"
)

// DashboardService defines the interface for aggregate views
type DashboardService interface {
	Dashboard(ctx context.Context, id auth.Identity) (*dto.DashboardResponse, error)
	GlobalTotals(ctx context.Context, id auth.Identity) (*ledger.GlobalTotals, error)
}

// dashboardServiceImpl implements DashboardService
type dashboardServiceImpl struct {
	repos        *repositories.Repositories
	authzService *auth.AuthorizationService
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repos *repositories.Repositories, authzService *auth.AuthorizationService) DashboardService {
	return &dashboardServiceImpl{
		repos:        repos,
		authzService: authzService,
	}
}

// Dashboard builds the landing view for id. Only teachers get totals and the unpaid list.
func (s *dashboardServiceImpl) Dashboard(ctx context.Context, id auth.Identity) (*dto.DashboardResponse, error) {
	if err := s.authzService.Authorize(id, auth.ActionViewDashboard); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	students, err := visibleStudents(ctx, s.repos.Students, s.authzService, id)
	if err != nil {
		return nil, err
	}
	summaries, sessions, err := summarize(ctx, s.repos.Sessions, students)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		User:     dto.NewUserResponse(user),
		Students: summaries,
	}
	if s.authzService.Authorize(id, auth.ActionViewTotals) == nil {
		ledgers := make([]ledger.StudentLedger, len(summaries))
		for i, sum := range summaries {
			ledgers[i] = sum.Ledger
		}
		totals := ledger.Totals(ledgers)
		resp.Totals = &totals
		resp.UnpaidSessions = ledger.Unpaid(sessions)
	}
	return resp, nil
}

// GlobalTotals sums the ledger of every student
func (s *dashboardServiceImpl) GlobalTotals(ctx context.Context, id auth.Identity) (*ledger.GlobalTotals, error) {
	if err := s.authzService.Authorize(id, auth.ActionViewTotals); err != nil {
		return nil, err
	}

	students, err := s.repos.Students.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	sessions, err := s.repos.Sessions.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}

	ids := make([]int64, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	totals := ledger.Totals(ledger.ByStudent(ids, sessions))
	return &totals, nil
}
