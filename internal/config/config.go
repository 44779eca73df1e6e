package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	// DefaultPort mantiene el puerto histórico del backend.
	DefaultPort = "3001"

	DefaultTokenTTL = 7 * 24 * time.Hour
)

type Config struct {
	Port      string
	JWTSecret string
	TokenTTL  time.Duration

	// DSN de Postgres. Vacío => storage in-memory (dev).
	DBDSN string

	// Orígenes permitidos para CORS. Vacío => cualquiera (dev).
	AllowedOrigins []string
}

// Load lee la configuración desde env (con .env opcional vía godotenv).
// JWT_SECRET es obligatorio: no hay fallback embebido en el código.
func Load(log *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system env")
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return nil, errors.New("missing required environment variable: JWT_SECRET")
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = DefaultPort
	}

	ttl := DefaultTokenTTL
	if v := strings.TrimSpace(os.Getenv("TOKEN_TTL")); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %q", v)
		}
		ttl = parsed
	}

	var origins []string
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		Port:           port,
		JWTSecret:      secret,
		TokenTTL:       ttl,
		DBDSN:          strings.TrimSpace(os.Getenv("DB_DSN")),
		AllowedOrigins: origins,
	}, nil
}
