package auth

import (
	"errors"
	"fmt"
	"time"

	"drivehub/internal/db"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// MintToken signs an HS256 token carrying the user's identity and role.
func MintToken(secret string, user *db.User) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not set")
	}
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry and returns the actor.
func ParseToken(secret, tokenString string) (Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Actor{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Actor{}, errors.New("invalid token")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Actor{}, errors.New("token missing user_id claim")
	}
	role, ok := claims["role"].(string)
	if !ok {
		return Actor{}, errors.New("token missing role claim")
	}
	switch db.Role(role) {
	case db.RoleCustomer, db.RoleAdmin:
	default:
		return Actor{}, fmt.Errorf("unknown role %q", role)
	}
	return Actor{UserID: int(userID), Role: db.Role(role)}, nil
}
