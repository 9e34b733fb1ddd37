package middlewares

import (
	"net/http"
	"strings"

	"civic-tracker-be/models"
	authUtils "civic-tracker-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	// ProfileKey is the gin context key holding the models.ViewerProfile.
	ProfileKey = "viewer_profile"
	// ProfileCookie carries the profile token for browser clients.
	ProfileCookie = "authority_token"
)

// AuthorityProfile resolves the viewer profile from a Bearer token or the profile cookie.
func AuthorityProfile(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.Request.Header.Get("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.Cookie(ProfileCookie); err == nil {
			tokenString = cookie
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			c.Abort()
			return
		}

		profile, err := authUtils.ParseProfileToken(secret, tokenString)
		if err != nil {
			log.Debug().Err(err).Msg("Profile token validation failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}

		c.Set(ProfileKey, profile)
		c.Next()
	}
}

// Profile returns the viewer profile set by AuthorityProfile.
func Profile(c *gin.Context) (models.ViewerProfile, bool) {
	v, ok := c.Get(ProfileKey)
	if !ok {
		return models.ViewerProfile{}, false
	}
	profile, ok := v.(models.ViewerProfile)
	return profile, ok
}
