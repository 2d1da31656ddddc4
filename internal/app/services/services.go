package services

import (
	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/auth"
	"github.com/yigit/tutorledger/internal/app/repositories"
	"github.com/yigit/tutorledger/internal/config"
	pkgAuth "github.com/yigit/tutorledger/internal/pkg/auth"
)

// Options carries the configurable behaviours of the services
type Options struct {
	MarkPaidMode          string
	ParentProvisioning    string
	ParentPasswordPolicy  string
	ParentDefaultPassword string
	GeneratedPasswordLen  int
	// Notifier receives committed ledger changes; nil disables notifications
	Notifier LedgerNotifier
}

// OptionsFromConfig extracts the service options from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MarkPaidMode:          cfg.Billing.MarkPaidMode,
		ParentProvisioning:    cfg.Accounts.ParentProvisioning,
		ParentPasswordPolicy:  cfg.Accounts.ParentPasswordPolicy,
		ParentDefaultPassword: cfg.Accounts.ParentDefaultPassword,
		GeneratedPasswordLen:  cfg.Accounts.GeneratedPasswordLen,
	}
}

// Services holds all the service instances
type Services struct {
	Auth      AuthService
	Accounts  AccountService
	Students  StudentService
	Sessions  SessionService
	Dashboard DashboardService
}

// NewServices wires every service onto the same repositories and policy
func NewServices(
	repos *repositories.Repositories,
	tx repositories.TxManager,
	jwtService *pkgAuth.JWTService,
	opts Options,
	logger zerolog.Logger,
) *Services {
	authz := auth.NewAuthorizationService()
	return &Services{
		Auth:      NewAuthService(repos.Users, repos.Tokens, jwtService, logger),
		Accounts:  NewAccountService(repos.Users, authz, opts, logger),
		Students:  NewStudentService(repos, tx, authz, opts, logger),
		Sessions:  NewSessionService(repos, authz, opts, logger),
		Dashboard: NewDashboardService(repos, authz),
	}
}
