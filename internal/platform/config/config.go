// Pacote config centraliza o carregamento das variáveis de ambiente usadas pelos binários.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config agrega todos os parâmetros necessários para API, worker e seed.
type Config struct {
	HTTPAddress string
	LogLevel    string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresMaxConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FilaKey           string
	ContadorKeyPrefix string
	SessoesKeyPrefix  string
	NotificacaoCanal  string

	VoteQueueEnabled   bool
	WorkerMaxRetries   int
	WorkerRetryBackoff time.Duration

	LoginRateLimitEnabled bool
	LoginRateLimitMax     int
	LoginRateLimitWindow  time.Duration

	AuthJWTSecret     string
	SessionTTL        time.Duration
	SessionCookieName string
	CookieSecure      bool
	LoginURL          string

	AdminEmail        string
	AdminPasswordHash string
	AdminPassword     string

	RecentVotesLimit int
	AutoMigrate      bool
	SeedFile         string

	WorkerMetricsAddress string
}

// Load lê um .env opcional e depois as variáveis de ambiente; variáveis já definidas têm precedência.
func Load() (Config, error) {
	if err := godotenv.Load(getEnv("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: falha ao ler arquivo env: %w", err)
	}

	cfg := Config{
		HTTPAddress:           getEnv("HTTP_ADDRESS", ":8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		PostgresHost:          getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:          getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:          getEnv("POSTGRES_USER", "eleicoes"),
		PostgresPassword:      getEnv("POSTGRES_PASSWORD", "eleicoes"),
		PostgresDB:            getEnv("POSTGRES_DB", "eleicoes"),
		PostgresSSLMode:       getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresMaxConns:      getEnvAsInt("POSTGRES_MAX_CONNS", 25),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		FilaKey:               getEnv("REDIS_QUEUE_KEY", "fila:votos"),
		ContadorKeyPrefix:     getEnv("REDIS_COUNTER_PREFIX", "contador"),
		SessoesKeyPrefix:      getEnv("REDIS_SESSION_PREFIX", "sessao:revogada"),
		NotificacaoCanal:      getEnv("REDIS_CHANGES_CHANNEL", "eleicoes:alteracoes"),
		VoteQueueEnabled:      getEnvAsBool("VOTE_QUEUE_ENABLED", false),
		WorkerMaxRetries:      getEnvAsInt("WORKER_MAX_RETRIES", 3),
		WorkerRetryBackoff:    time.Duration(getEnvAsInt("WORKER_RETRY_BACKOFF_MS", 200)) * time.Millisecond,
		LoginRateLimitEnabled: getEnvAsBool("LOGIN_RATE_LIMIT_ENABLED", true),
		LoginRateLimitMax:     getEnvAsInt("LOGIN_RATE_LIMIT_MAX", 5),
		LoginRateLimitWindow:  time.Duration(getEnvAsInt("LOGIN_RATE_LIMIT_WINDOW", 300)) * time.Second,
		AuthJWTSecret:         os.Getenv("AUTH_JWT_SECRET"),
		SessionTTL:            time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 480)) * time.Minute,
		SessionCookieName:     getEnv("SESSION_COOKIE_NAME", "admin_session"),
		CookieSecure:          getEnvAsBool("SESSION_COOKIE_SECURE", false),
		LoginURL:              getEnv("LOGIN_URL", "/admin/login"),
		AdminEmail:            getEnv("ADMIN_EMAIL", "admin@voting.com"),
		AdminPasswordHash:     os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		RecentVotesLimit:      getEnvAsInt("DASHBOARD_RECENT_VOTES", 5),
		AutoMigrate:           getEnvAsBool("DB_AUTO_MIGRATE", true),
		SeedFile:              os.Getenv("SEED_FILE"),
		WorkerMetricsAddress:  getEnv("WORKER_METRICS_ADDRESS", ":9090"),
	}

	dbStr := getEnv("REDIS_DB", "0")
	dbInt, err := strconv.Atoi(dbStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: REDIS_DB invalido: %w", err)
	}
	cfg.RedisDB = dbInt

	return cfg, nil
}

// ValidateAuth é exigido apenas pela API; worker e seed não emitem sessões.
func (c Config) ValidateAuth() error {
	if len(c.AuthJWTSecret) < 16 {
		return fmt.Errorf("config: AUTH_JWT_SECRET deve ter ao menos 16 caracteres")
	}
	if c.AdminPasswordHash == "" && c.AdminPassword == "" {
		return fmt.Errorf("config: defina ADMIN_PASSWORD_HASH ou ADMIN_PASSWORD")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL_MINUTES deve ser positivo")
	}
	return nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}
