package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Mark-paid behaviours
const (
	MarkPaidToggle  = "toggle"
	MarkPaidSetTrue = "set_true"
)

// Parent provisioning behaviours when a student is added for an unknown parent email
const (
	ParentProvisioningStrict = "strict"
	ParentProvisioningAuto   = "auto_provision"
)

// Password policies for parent accounts created by a teacher
const (
	ParentPasswordGenerate = "generate"
	ParentPasswordFixed    = "fixed"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Session struct {
		Secret string `yaml:"secret" env:"SESSION_SECRET"`
		Name   string `yaml:"name" env:"SESSION_NAME"`
		MaxAge int    `yaml:"max_age" env:"SESSION_MAX_AGE"`
		Secure bool   `yaml:"secure" env:"SESSION_SECURE"`
	} `yaml:"session"`

	Billing struct {
		MarkPaidMode string `yaml:"mark_paid_mode" env:"BILLING_MARK_PAID_MODE"`
	} `yaml:"billing"`

	Accounts struct {
		ParentProvisioning    string `yaml:"parent_provisioning" env:"ACCOUNTS_PARENT_PROVISIONING"`
		ParentPasswordPolicy  string `yaml:"parent_password_policy" env:"ACCOUNTS_PARENT_PASSWORD_POLICY"`
		ParentDefaultPassword string `yaml:"parent_default_password" env:"ACCOUNTS_PARENT_DEFAULT_PASSWORD"`
		GeneratedPasswordLen  int    `yaml:"generated_password_length" env:"ACCOUNTS_GENERATED_PASSWORD_LENGTH"`
	} `yaml:"accounts"`

	Seed struct {
		Enabled         bool   `yaml:"enabled" env:"SEED_ENABLED"`
		DemoData        bool   `yaml:"demo_data" env:"SEED_DEMO_DATA"`
		TeacherUsername string `yaml:"teacher_username" env:"SEED_TEACHER_USERNAME"`
		TeacherEmail    string `yaml:"teacher_email" env:"SEED_TEACHER_EMAIL"`
		TeacherPassword string `yaml:"teacher_password" env:"SEED_TEACHER_PASSWORD"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a .env file, a YAML file and environment variables,
// in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv exports the variables of a .env file without overriding ones already set
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "tutorledger"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "tutorledger.app"

	config.Session.Name = "tutorledger_session"
	config.Session.MaxAge = 86400 * 7

	config.Billing.MarkPaidMode = MarkPaidToggle

	config.Accounts.ParentProvisioning = ParentProvisioningStrict
	config.Accounts.ParentPasswordPolicy = ParentPasswordGenerate
	config.Accounts.ParentDefaultPassword = "parent123"
	config.Accounts.GeneratedPasswordLen = 12

	config.Seed.Enabled = true
	config.Seed.TeacherUsername = "teacher"
	config.Seed.TeacherEmail = "teacher@example.com"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if len(config.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection lifetime: %w", err)
	}

	config.Billing.MarkPaidMode = strings.ToLower(strings.TrimSpace(config.Billing.MarkPaidMode))
	switch config.Billing.MarkPaidMode {
	case MarkPaidToggle, MarkPaidSetTrue:
	default:
		return fmt.Errorf("billing.mark_paid_mode must be %q or %q, got %q", MarkPaidToggle, MarkPaidSetTrue, config.Billing.MarkPaidMode)
	}

	config.Accounts.ParentProvisioning = strings.ToLower(strings.TrimSpace(config.Accounts.ParentProvisioning))
	switch config.Accounts.ParentProvisioning {
	case ParentProvisioningStrict, ParentProvisioningAuto:
	default:
		return fmt.Errorf("accounts.parent_provisioning must be %q or %q, got %q", ParentProvisioningStrict, ParentProvisioningAuto, config.Accounts.ParentProvisioning)
	}

	config.Accounts.ParentPasswordPolicy = strings.ToLower(strings.TrimSpace(config.Accounts.ParentPasswordPolicy))
	switch config.Accounts.ParentPasswordPolicy {
	case ParentPasswordGenerate:
		if config.Accounts.GeneratedPasswordLen < 8 {
			return fmt.Errorf("accounts.generated_password_length must be at least 8")
		}
	case ParentPasswordFixed:
		if config.Accounts.ParentDefaultPassword == "" {
			return fmt.Errorf("accounts.parent_default_password is required with the fixed policy")
		}
	default:
		return fmt.Errorf("accounts.parent_password_policy must be %q or %q, got %q", ParentPasswordGenerate, ParentPasswordFixed, config.Accounts.ParentPasswordPolicy)
	}

	if config.Seed.Enabled && config.Seed.TeacherPassword == "" {
		return fmt.Errorf("seed.teacher_password is required when seeding is enabled")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Server.Mode) == "production"
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
