package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ServerExpiry decodes the bearer token without verifying its signature
// and returns the backend's own "exp" claim. It is informational only: the
// local record keeps its own expiry and the two are never reconciled.
func ServerExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
