package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"atelieconnect/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultUser = models.CurrentUser{Name: "Maria Silva", AvatarRef: "img://avatar"}

func TestAuth_IssueAndAuthenticate(t *testing.T) {
	a := New(slog.Default(), "secret", time.Hour, defaultUser)

	token, err := a.IssueToken(context.Background(), models.CurrentUser{Name: " Ana Silva ", AvatarRef: "img://ana"})
	require.NoError(t, err)

	user, err := a.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, models.CurrentUser{Name: "Ana Silva", AvatarRef: "img://ana"}, user)

	_, err = a.Authenticate(token + "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.IssueToken(context.Background(), models.CurrentUser{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_CurrentUser(t *testing.T) {
	tests := []struct {
		name     string
		fallback models.CurrentUser
		ctx      context.Context
		want     models.CurrentUser
		wantErr  error
	}{
		{
			name:     "user from context",
			fallback: defaultUser,
			ctx:      WithUser(context.Background(), models.CurrentUser{Name: "Beatriz Santos"}),
			want:     models.CurrentUser{Name: "Beatriz Santos"},
		},
		{
			name:     "default user",
			fallback: defaultUser,
			ctx:      context.Background(),
			want:     defaultUser,
		},
		{
			name:    "no user at all",
			ctx:     context.Background(),
			wantErr: ErrNoCurrentUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(slog.Default(), "secret", time.Hour, tt.fallback)

			user, err := a.CurrentUser(tt.ctx)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, user)
		})
	}
}
