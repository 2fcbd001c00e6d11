package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired inspects the exp claim of a JWT bearer token without
// verifying its signature; the server remains the authority. A token with
// no exp claim is reported as not expired. A token that is not a JWT yields
// an error and should be treated as "unknown".
func TokenExpired(token string, now time.Time) (bool, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false, err
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return !now.Before(claims.ExpiresAt.Time), nil
}
