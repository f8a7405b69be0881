package api

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
	"golang.org/x/crypto/bcrypt"

	platformobservability "github.com/Apurer/go-gin-order-api/internal/platform/observability"
)

const (
	// EnvironmentLocal is the only environment allowed to run without JWT_SECRET.
	EnvironmentLocal = "local"

	developmentJWTSecret = "pedidos-local-development-secret"
)

// AdminConfig describes the bootstrap administrator. It is ignored when Email is empty.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

// Enabled reports whether an admin account should be ensured at startup.
func (a AdminConfig) Enabled() bool {
	return a.Email != ""
}

// Config carries environment-driven settings for the API, worker and purger processes.
type Config struct {
	Port              string
	PostgresDSN       string
	Environment       string
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	BcryptCost        int
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	Admin             AdminConfig
	// SessionPurgeInterval makes cmd/session-purger loop; zero runs a single purge.
	SessionPurgeInterval time.Duration

	LogLevel      slog.Level
	TraceExporter platformobservability.Exporter
	OTLPEndpoint  string
	OTLPInsecure  bool
}

// Observability returns the logging and tracing settings for serviceName.
func (c Config) Observability(serviceName string) platformobservability.Settings {
	return platformobservability.Settings{
		ServiceName:  serviceName,
		Environment:  c.Environment,
		LogLevel:     c.LogLevel,
		Exporter:     c.TraceExporter,
		OTLPEndpoint: c.OTLPEndpoint,
		OTLPInsecure: c.OTLPInsecure,
	}
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		Environment:       strings.ToLower(envDefault("ENVIRONMENT", EnvironmentLocal)),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		Admin: AdminConfig{
			Name:     envDefault("ADMIN_NAME", "Administrador"),
			Email:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		OTLPEndpoint: strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTLPInsecure: strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")) != "0",
	}
	var errs []error
	var err error

	if cfg.LogLevel, err = platformobservability.ParseLevel(os.Getenv("LOG_LEVEL")); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if cfg.TraceExporter, err = platformobservability.ParseExporter(os.Getenv("OTEL_TRACES_EXPORTER")); err != nil {
		errs = append(errs, fmt.Errorf("OTEL_TRACES_EXPORTER: %w", err))
	}
	if cfg.JWTSecret == "" {
		if cfg.Environment != EnvironmentLocal {
			errs = append(errs, fmt.Errorf("JWT_SECRET is required when ENVIRONMENT=%s", cfg.Environment))
		}
		cfg.JWTSecret = developmentJWTSecret
	}
	if cfg.AccessTokenTTL, err = positiveDuration("ACCESS_TOKEN_TTL_MINUTES", 30, time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.RefreshTokenTTL, err = positiveDuration("REFRESH_TOKEN_TTL_HOURS", 168, time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionPurgeInterval, err = positiveDuration("SESSION_PURGE_INTERVAL_MINUTES", 0, time.Minute); err != nil {
		errs = append(errs, err)
	}
	cfg.BcryptCost = bcrypt.DefaultCost
	if raw := strings.TrimSpace(os.Getenv("BCRYPT_COST")); raw != "" {
		cost, convErr := strconv.Atoi(raw)
		if convErr != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			errs = append(errs, fmt.Errorf("BCRYPT_COST must be an integer between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
		} else {
			cfg.BcryptCost = cost
		}
	}
	if cfg.Admin.Enabled() && cfg.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set"))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// positiveDuration parses key as a positive integer count of unit. Unset keys
// yield fallback units.
func positiveDuration(key string, fallback int, unit time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(fallback) * unit, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return time.Duration(value) * unit, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
