package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// IssueToken signs a session token carrying the user id, issue time and
// expiry.
func IssueToken(userID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken checks signature and expiry and recovers the user id and
// issue time. Any tamper, staleness or alg confusion yields ErrInvalidToken.
func VerifyToken(tokenString, secret string) (string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", time.Time{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, ErrInvalidToken
	}

	userID, _ := claims["id"].(string)
	if userID == "" {
		return "", time.Time{}, ErrInvalidToken
	}

	issuedAtValue, _ := claims["iat"].(float64)
	if issuedAtValue == 0 {
		return "", time.Time{}, ErrInvalidToken
	}

	return userID, time.Unix(int64(issuedAtValue), 0), nil
}
