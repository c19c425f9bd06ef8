package jwt

import (
	"errors"
	"fmt"
	"time"

	"atelieconnect/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidClaims = errors.New("invalid token claims")

func NewToken(user models.CurrentUser, secret string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["name"] = user.Name
	claims["avatar"] = user.AvatarRef
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(duration).Unix()

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseUser verifies tokenString and returns the identity it carries.
func ParseUser(tokenString, secret string) (models.CurrentUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.CurrentUser{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.CurrentUser{}, ErrInvalidClaims
	}

	name, _ := claims["name"].(string)
	avatar, _ := claims["avatar"].(string)
	if name == "" {
		return models.CurrentUser{}, ErrInvalidClaims
	}

	return models.CurrentUser{Name: name, AvatarRef: avatar}, nil
}
