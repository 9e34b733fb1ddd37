package middlewares

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the configured origins, or every origin when the allowlist is empty.
// Requests without an Origin header (curl, server tools) are not affected by CORS.
func CORS(allowlist []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowlist) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowlist
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
