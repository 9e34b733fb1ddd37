package authUtils

import (
	"fmt"
	"time"

	"civic-tracker-be/models"

	"github.com/dgrijalva/jwt-go"
)

// ProfileTokenTTL is how long an authority profile token stays valid.
const ProfileTokenTTL = 72 * time.Hour

// GenerateProfileToken signs the viewer profile an authority selected at login.
// The token carries scope only; it is not proof of identity.
func GenerateProfileToken(secret string, profile models.ViewerProfile) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret is not configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gmail":      profile.Gmail,
		"state":      profile.State,
		"department": profile.Department,
		"exp":        time.Now().Add(ProfileTokenTTL).Unix(),
	})

	return token.SignedString([]byte(secret))
}

// ParseProfileToken verifies the signature and returns the embedded profile.
func ParseProfileToken(secret, tokenString string) (models.ViewerProfile, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.ViewerProfile{}, fmt.Errorf("invalid profile token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.ViewerProfile{}, fmt.Errorf("invalid profile token claims")
	}

	return models.ViewerProfile{
		Gmail:      claimString(claims, "gmail"),
		State:      claimString(claims, "state"),
		Department: claimString(claims, "department"),
	}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
