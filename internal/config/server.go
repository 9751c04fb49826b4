package config

import (
	"errors"
	"fmt"
	"time"
)

// Server holds the development backend's configuration.
type Server struct {
	Port string
	// DatabaseURL selects the postgres user store. Empty keeps users in
	// memory.
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	CORSOrigins []string
}

// LoadServer reads the backend configuration from the environment.
func LoadServer() (Server, error) {
	cfg := Server{
		Port:        fallback(env("PORT"), "8000"),
		DatabaseURL: env("DATABASE_URL"),
		JWTSecret:   env("JWT_SECRET"),
		JWTIssuer:   fallback(env("JWT_ISSUER"), "wayfarer-dev"),
		JWTTTL:      time.Duration(positiveInt(env("JWT_TTL_MINUTES"), 60)) * time.Minute,
		CORSOrigins: parseCSV(fallback(env("CORS_ALLOWED_ORIGINS"), "*")),
	}
	if cfg.JWTSecret == "" {
		return Server{}, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Server) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}
