package middleware

import (
	"strings"

	"github.com/cyphera/remote-accounts/internal/constants"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig lists the comma separated CORS settings read from the
// environment. Empty fields fall back to defaults.
type CORSConfig struct {
	AllowedOrigins   string
	AllowedMethods   string
	AllowedHeaders   string
	ExposedHeaders   string
	AllowCredentials bool
}

func CORS(cfg CORSConfig) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOr(cfg.AllowedOrigins, []string{"http://localhost:3000"})
	corsConfig.AllowMethods = splitOr(cfg.AllowedMethods, []string{"GET", "POST", "PUT", "OPTIONS"})
	corsConfig.AllowHeaders = splitOr(cfg.AllowedHeaders, []string{"Origin", "Content-Type", "Accept", constants.APIKeyHeader, constants.CorrelationIDHeader})
	corsConfig.ExposeHeaders = splitOr(cfg.ExposedHeaders, []string{constants.CorrelationIDHeader})
	corsConfig.AllowCredentials = cfg.AllowCredentials
	return cors.New(corsConfig)
}

func splitOr(value string, fallback []string) []string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
