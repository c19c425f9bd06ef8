package jwt

import (
	"testing"
	"time"

	"atelieconnect/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

var maria = models.CurrentUser{Name: "Maria Silva", AvatarRef: "img://avatar"}

func TestNewTokenRoundTrip(t *testing.T) {
	token, err := NewToken(maria, secret, time.Hour)
	require.NoError(t, err)

	user, err := ParseUser(token, secret)
	require.NoError(t, err)
	assert.Equal(t, maria, user)
}

func TestParseUser_Errors(t *testing.T) {
	expired, err := NewToken(maria, secret, -time.Minute)
	require.NoError(t, err)

	valid, err := NewToken(maria, secret, time.Hour)
	require.NoError(t, err)

	nameless, err := NewToken(models.CurrentUser{}, secret, time.Hour)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"name": "x"}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "expired", token: expired, secret: secret},
		{name: "wrong secret", token: valid, secret: "other"},
		{name: "garbage", token: "not-a-token", secret: secret},
		{name: "missing name", token: nameless, secret: secret},
		{name: "missing exp", token: noExp, secret: secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUser(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}
