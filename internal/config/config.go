package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Attendance   AttendanceConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
//
// JWTSecret is generated at startup when AUTH_JWT_SECRET is empty. In that
// case EphemeralSecret is true and every restart invalidates all tokens.
type AuthConfig struct {
	JWTSecret       []byte
	EphemeralSecret bool
	BcryptCost      int
	StrictTokens    bool
	PublicPaths     []string
	AdminUsernames  []string
}

// Lock backends for attendance serialization.
const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

// AttendanceConfig tunes the attendance ledger.
type AttendanceConfig struct {
	Timezone            string
	LockBackend         string
	LockTTLSeconds      int
	EnforceSignOutOrder bool
}

// NotificationConfig holds payroll notification settings.
type NotificationConfig struct {
	QueueSize int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	secret, ephemeral, err := loadSecret(os.Getenv("AUTH_JWT_SECRET"))
	if err != nil {
		return nil, fmt.Errorf("generate jwt secret: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "attendance-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:       secret,
			EphemeralSecret: ephemeral,
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 12),
			StrictTokens:    getEnvAsBool("AUTH_STRICT_TOKENS", false),
			PublicPaths:     getEnvAsList("AUTH_PUBLIC_PATHS"),
			AdminUsernames:  getEnvAsList("AUTH_ADMIN_USERNAMES"),
		},
		Attendance: AttendanceConfig{
			Timezone:            getEnv("ATTENDANCE_TIMEZONE", "UTC"),
			LockBackend:         strings.ToLower(getEnv("ATTENDANCE_LOCK_BACKEND", LockBackendLocal)),
			LockTTLSeconds:      getEnvAsInt("ATTENDANCE_LOCK_TTL_SECONDS", 10),
			EnforceSignOutOrder: getEnvAsBool("ATTENDANCE_ENFORCE_SIGN_OUT_ORDER", false),
		},
		Notification: NotificationConfig{
			QueueSize: getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
		},
	}

	switch cfg.Attendance.LockBackend {
	case LockBackendLocal, LockBackendRedis:
	default:
		return nil, fmt.Errorf("invalid ATTENDANCE_LOCK_BACKEND %q", cfg.Attendance.LockBackend)
	}
	if _, err := cfg.Attendance.Location(); err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the timezone used to decide what "today" is.
func (a AttendanceConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(a.Timezone)
}

// LockTTL returns the redis lock expiry.
func (a AttendanceConfig) LockTTL() time.Duration {
	if a.LockTTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.LockTTLSeconds) * time.Second
}

func loadSecret(raw string) ([]byte, bool, error) {
	if raw != "" {
		return []byte(raw), false, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, false, err
	}
	return buf, true, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
