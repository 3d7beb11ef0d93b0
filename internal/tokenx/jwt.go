// Package tokenx inspects bearer tokens on the client side.
//
// The client never holds the signing key, so tokens are decoded without
// signature verification. The only question answered here is whether a token
// is already past its "exp" claim, which lets the session store skip a round
// trip for credentials the server would reject anyway.
package tokenx

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/favisend/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser()

// Expiry decodes the token payload and returns its "exp" claim.
// A token without "exp" is reported as common.ErrInvalidToken.
func Expiry(tokenString string) (time.Time, error) {
	claims := jwt.MapClaims{}

	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, common.ErrInvalidToken
	}

	return exp.Time, nil
}

// IsExpired reports whether the token is expired at now.
//
// It fails closed: an empty, malformed or exp-less token counts as expired.
func IsExpired(tokenString string, now time.Time) bool {
	if tokenString == "" {
		return true
	}
	exp, err := Expiry(tokenString)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
