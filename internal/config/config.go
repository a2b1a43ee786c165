package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	DBDriver    string
	AutoMigrate bool

	SessionSecret string
	SessionTTL    time.Duration
	SecureCookie  bool

	RabbitMQURL string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	CORSOrigins        []string
	LoginRatePerMinute int
	// TrustProxy faz o rate limit usar X-Forwarded-For/X-Real-IP.
	TrustProxy bool
}

// Load lê o .env (se existir) e as variáveis de ambiente.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("aviso: não foi possível ler .env: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv monta a configuração a partir de uma função de lookup.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		HTTPAddr:      withDefault(getenv("HTTP_ADDR"), ":8080"),
		DatabaseURL:   getenv("DATABASE_URL"),
		DBDriver:      withDefault(getenv("DB_DRIVER"), "pgx"),
		SessionSecret: getenv("SESSION_SECRET"),
		RabbitMQURL:   getenv("RABBITMQ_URL"),
		MailHost:      getenv("MAIL_HOST"),
		MailUser:      getenv("MAIL_USER"),
		MailPass:      getenv("MAIL_PASS"),
		MailFrom:      withDefault(getenv("MAIL_FROM"), "nao-responda@leads.local"),
		CORSOrigins:   splitList(withDefault(getenv("CORS_ORIGINS"), "http://localhost:5173")),
	}

	var err error
	if cfg.SessionTTL, err = parseDuration(getenv("SESSION_TTL"), 12*time.Hour); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.MailPort, err = parseInt(getenv("MAIL_PORT"), 587); err != nil {
		return nil, fmt.Errorf("MAIL_PORT: %w", err)
	}
	if cfg.LoginRatePerMinute, err = parseInt(getenv("LOGIN_RATE_PER_MINUTE"), 10); err != nil {
		return nil, fmt.Errorf("LOGIN_RATE_PER_MINUTE: %w", err)
	}
	if cfg.AutoMigrate, err = parseBool(getenv("AUTO_MIGRATE"), false); err != nil {
		return nil, fmt.Errorf("AUTO_MIGRATE: %w", err)
	}
	if cfg.SecureCookie, err = parseBool(getenv("SECURE_COOKIE"), false); err != nil {
		return nil, fmt.Errorf("SECURE_COOKIE: %w", err)
	}
	if cfg.TrustProxy, err = parseBool(getenv("TRUST_PROXY"), false); err != nil {
		return nil, fmt.Errorf("TRUST_PROXY: %w", err)
	}

	return cfg, nil
}

// ValidateAPI checks what the HTTP API needs to start.
func (c *Config) ValidateAPI() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL é obrigatória")
	}
	if len(c.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET é obrigatória e precisa de pelo menos 16 bytes")
	}
	if c.LoginRatePerMinute <= 0 {
		return errors.New("LOGIN_RATE_PER_MINUTE precisa ser positivo")
	}
	return nil
}

// ValidateNotifier checks what the notification worker needs to start.
func (c *Config) ValidateNotifier() error {
	if c.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL é obrigatória")
	}
	if !c.MailEnabled() {
		return errors.New("MAIL_HOST é obrigatório para o notifier")
	}
	return nil
}

// MailEnabled indica se há SMTP configurado para as notificações.
func (c *Config) MailEnabled() bool { return c.MailHost != "" }

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return time.ParseDuration(strings.TrimSpace(raw))
}

func parseInt(raw string, def int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

func parseBool(raw string, def bool) (bool, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}
