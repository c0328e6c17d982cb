package configs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"natours-api/internal/db"
)

type Config struct {
	Env              string        `validate:"oneof=development production"`
	Port             string        `validate:"required,numeric"`
	DatabaseTemplate string        `validate:"required"`
	DatabasePassword string
	DBName           string        `validate:"required"`
	JWTSecret        string        `validate:"required"`
	JWTExpiresIn     time.Duration `validate:"gt=0"`
	RateLimitMax     int           `validate:"gt=0"`
	RateLimitWindow  time.Duration `validate:"gt=0"`
	BodyLimitBytes   int64         `validate:"gt=0"`
	PublicDir        string
	TLSEnabled       bool
	AuditExportEvery time.Duration `validate:"gt=0"`

	OperatorID           string
	OperatorEmail        string `validate:"omitempty,email"`
	OperatorPasswordHash string
	OperatorRole         string `validate:"oneof=user guide lead-guide admin"`
}

func (c Config) Development() bool {
	return c.Env == "development"
}

// DatabaseURI substitutes the password into the connection template.
func (c Config) DatabaseURI() string {
	return db.URI(c.DatabaseTemplate, c.DatabasePassword)
}

// LoadConfig reads path (if it exists) into the environment and builds the
// config from it. Variables already set in the environment win.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("No %s file found, using environment variables", path)
	}

	var errs []error
	cfg := Config{
		Env:                  getenv("APP_ENV", "production"),
		Port:                 getenv("PORT", "3000"),
		DatabaseTemplate:     os.Getenv("DATABASE"),
		DatabasePassword:     os.Getenv("DATABASE_PASSWORD"),
		DBName:               getenv("DB_NAME", "natours"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTExpiresIn:         durationVar("JWT_EXPIRES_IN", 90*24*time.Hour, &errs),
		RateLimitMax:         intVar("RATE_LIMIT_MAX", 100, &errs),
		RateLimitWindow:      durationVar("RATE_LIMIT_WINDOW", time.Hour, &errs),
		BodyLimitBytes:       int64(intVar("BODY_LIMIT_BYTES", 10*1024, &errs)),
		PublicDir:            getenv("PUBLIC_DIR", "public"),
		TLSEnabled:           boolVar("TLS_ENABLED", false, &errs),
		AuditExportEvery:     durationVar("AUDIT_EXPORT_INTERVAL", 30*time.Second, &errs),
		OperatorID:           os.Getenv("OPERATOR_ID"),
		OperatorEmail:        os.Getenv("OPERATOR_EMAIL"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
		OperatorRole:         getenv("OPERATOR_ROLE", "admin"),
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intVar(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return n
}

func boolVar(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return b
}

// durationVar accepts Go durations plus a day suffix ("90d").
func durationVar(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return d
}

func ParseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}
