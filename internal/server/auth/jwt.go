// Package auth implements issuing and parsing of the bearer tokens handed
// out on login: HS256-signed JWTs carrying the user's identifier and an
// absolute expiry.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims extends the registered claim set with the user's identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserUUID string `json:"user_uuid"`
}

// GenerateToken signs a token whose expiry is now + validityDuration.
func GenerateToken(userUUID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserUUID: userUUID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseClaims verifies the signature and expiry and returns the claim set.
func ParseClaims(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, err
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// GetUserUUIDFromToken verifies the token and returns the user identifier
// claim.
func GetUserUUIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := ParseClaims(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserUUID, nil
}
