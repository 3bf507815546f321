package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ataleek/portal/internal/auth"
	"github.com/ataleek/portal/internal/db"
	"github.com/ataleek/portal/internal/model"
	"github.com/ataleek/portal/internal/repository"
	"github.com/ataleek/portal/pkg/logger"
)

const sessionTTL = 24 * time.Hour

// OAuthExchanger is the part of the OAuth provider the service needs.
type OAuthExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

// AuthService owns the login lifecycle: the OAuth round trip, the user
// row holding the access token, and the session token on top of it.
type AuthService struct {
	secret string

	tx    db.Transactor
	oauth OAuthExchanger
	users repository.UserRepository
}

func NewAuthService(secret string, tx db.Transactor) *AuthService {
	return &AuthService{secret: secret, tx: tx}
}

func (s *AuthService) WithOAuth(oauth OAuthExchanger) *AuthService {
	s.oauth = oauth
	return s
}

func (s *AuthService) WithUserRepo(users repository.UserRepository) *AuthService {
	s.users = users
	return s
}

// LoginURL returns the provider authorization URL for one login
// attempt.
func (s *AuthService) LoginURL(state string) string {
	return s.oauth.AuthURL(state)
}

// CompleteLogin exchanges the callback code for an access token,
// creates the user row on first login, and returns a signed session
// token.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (string, *Error) {
	l := logger.FromContext(ctx)

	accessToken, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		l.Error("oauth exchange failed", zap.Error(err))
		return "", NewError(ErrorCodeUpstream, "authorization failed")
	}

	var user *repository.User
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.users.GetByToken(txCtx, accessToken)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		user, err = s.users.Create(txCtx, accessToken)
		return err
	})
	if err != nil {
		l.Error("failed to create user session", zap.Error(err))
		return "", NewError(ErrorCodeUnspecified, "failed to log in")
	}

	session, err := auth.GenerateSessionToken(s.secret, user.ID, sessionTTL)
	if err != nil {
		l.Error("failed to sign session token", zap.Error(err))
		return "", NewError(ErrorCodeUnspecified, "failed to log in")
	}

	l.Info("user logged in", zap.Int64("user_id", user.ID))
	return session, nil
}

// UserFromSession resolves a session token to the user row it points
// at. A stale token (deleted user, bad signature, expired) is simply
// unauthorized.
func (s *AuthService) UserFromSession(ctx context.Context, token string) (*model.User, *Error) {
	claims, err := auth.VerifySessionToken(s.secret, token)
	if err != nil {
		return nil, NewError(ErrorCodeUnauthorized, "invalid session")
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeUnauthorized, "session expired")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to load session")
	}

	return &model.User{ID: user.ID, AccessToken: user.AccessToken}, nil
}

// Logout deletes the user row created at login. Logging out twice is a
// no-op.
func (s *AuthService) Logout(ctx context.Context, userID int64) *Error {
	l := logger.FromContext(ctx)

	err := s.users.Delete(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		l.Error("failed to delete user", zap.Int64("user_id", userID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to log out")
	}

	l.Info("user logged out", zap.Int64("user_id", userID))
	return nil
}
