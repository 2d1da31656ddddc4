package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/tutorledger/internal/app/controllers"
	appMigrations "github.com/yigit/tutorledger/internal/app/migrations"
	appRepos "github.com/yigit/tutorledger/internal/app/repositories"
	appRoutes "github.com/yigit/tutorledger/internal/app/routes"
	appServices "github.com/yigit/tutorledger/internal/app/services"
	"github.com/yigit/tutorledger/internal/config"
	"github.com/yigit/tutorledger/internal/db"
	appMiddleware "github.com/yigit/tutorledger/internal/middleware"
	pkgAuth "github.com/yigit/tutorledger/internal/pkg/auth"
	"github.com/yigit/tutorledger/internal/pkg/helpers"
	"github.com/yigit/tutorledger/internal/pkg/logger"
	"github.com/yigit/tutorledger/internal/pkg/validation"
	"github.com/yigit/tutorledger/internal/pkg/websession"
	"github.com/yigit/tutorledger/internal/pkg/websocket"
	"github.com/yigit/tutorledger/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Sessions       *websession.Manager
	Hub            *websocket.Hub
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  cfg.Logging.Format == "text",
		Service: "tutorledger",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(lgr).UpFromPool(ctx, database.Pool); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.NewSeeder(appRepos.NewRepositories(database.Pool), lgr).CreateDefaultData(ctx, cfg); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)
	tx := appRepos.NewTxManager(database)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Sessions = websession.NewManager(websession.Options{
		Name:   cfg.Session.Name,
		Secret: cfg.Session.Secret,
		MaxAge: cfg.Session.MaxAge,
		Secure: cfg.Session.Secure,
	})

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "ledger-feed").Logger())

	opts := appServices.OptionsFromConfig(cfg)
	opts.Notifier = deps.Hub
	deps.Services = appServices.NewServices(deps.Repos, tx, deps.JWTService, opts, lgr)
	lgr.Info().
		Str("markPaidMode", cfg.Billing.MarkPaidMode).
		Str("parentProvisioning", cfg.Accounts.ParentProvisioning).
		Str("parentPasswordPolicy", cfg.Accounts.ParentPasswordPolicy).
		Msg("Services configured")

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Sessions)

	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.Services.Auth, deps.Sessions, lgr),
		Students:  appControllers.NewStudentController(deps.Services.Students, lgr),
		Sessions:  appControllers.NewSessionController(deps.Services.Sessions, lgr),
		Accounts:  appControllers.NewAccountController(deps.Services.Accounts, lgr),
		Dashboard: appControllers.NewDashboardController(deps.Services.Dashboard, lgr),
		Live:      appControllers.NewLiveController(deps.Hub, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterGinRules(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.SessionContext(deps.Sessions))

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}
