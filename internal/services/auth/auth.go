package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/lib/jwt"
	"atelieconnect/internal/lib/logger/sl"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoCurrentUser      = errors.New("no current user")
)

type ctxKey struct{}

// Auth resolves the identity new works are attributed to. Authentication
// itself is external: a token simply carries a name and avatar.
type Auth struct {
	log         *slog.Logger
	secret      string
	tokenTTL    time.Duration
	defaultUser models.CurrentUser
}

func New(log *slog.Logger, secret string, tokenTTL time.Duration, defaultUser models.CurrentUser) *Auth {
	return &Auth{
		log:         log,
		secret:      secret,
		tokenTTL:    tokenTTL,
		defaultUser: defaultUser,
	}
}

// IssueToken mints a token for user.
func (a *Auth) IssueToken(ctx context.Context, user models.CurrentUser) (string, error) {
	const op = "auth.IssueToken"

	log := a.log.With(
		slog.String("op", op),
		slog.String("name", user.Name),
	)

	user.Name = strings.TrimSpace(user.Name)
	if user.Name == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := jwt.NewToken(user, a.secret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.InfoContext(ctx, "token issued")

	return token, nil
}

func (a *Auth) Authenticate(token string) (models.CurrentUser, error) {
	const op = "auth.Authenticate"

	user, err := jwt.ParseUser(token, a.secret)
	if err != nil {
		a.log.Debug("rejected token", slog.String("op", op), sl.Err(err))

		return models.CurrentUser{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return user, nil
}

// CurrentUser returns the user stored in ctx, falling back to the
// configured default user.
func (a *Auth) CurrentUser(ctx context.Context) (models.CurrentUser, error) {
	if user, ok := UserFromContext(ctx); ok {
		return user, nil
	}

	if a.defaultUser.Name == "" {
		return models.CurrentUser{}, ErrNoCurrentUser
	}

	return a.defaultUser, nil
}

func WithUser(ctx context.Context, user models.CurrentUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func UserFromContext(ctx context.Context) (models.CurrentUser, bool) {
	user, ok := ctx.Value(ctxKey{}).(models.CurrentUser)
	return user, ok
}
