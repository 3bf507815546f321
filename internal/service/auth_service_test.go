package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ataleek/portal/internal/auth"
	"github.com/ataleek/portal/internal/repository"
)

const sessionSecret = "test-secret"

func TestAuthService_CompleteLogin(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(*MockOAuthExchanger, *MockUserRepository)
		expectedUserID int64
		expectedError  bool
		errorCode      ErrorCode
	}{
		{
			name: "first login creates a user row",
			setupMocks: func(oauth *MockOAuthExchanger, users *MockUserRepository) {
				oauth.On("Exchange", mock.Anything, "code-1").Return("tok-1", nil)
				users.On("GetByToken", mock.Anything, "tok-1").Return(nil, repository.ErrNotFound)
				users.On("Create", mock.Anything, "tok-1").Return(&repository.User{ID: 7, AccessToken: "tok-1"}, nil)
			},
			expectedUserID: 7,
		},
		{
			name: "returning token reuses the existing row",
			setupMocks: func(oauth *MockOAuthExchanger, users *MockUserRepository) {
				oauth.On("Exchange", mock.Anything, "code-1").Return("tok-1", nil)
				users.On("GetByToken", mock.Anything, "tok-1").Return(&repository.User{ID: 3, AccessToken: "tok-1"}, nil)
			},
			expectedUserID: 3,
		},
		{
			name: "exchange failure",
			setupMocks: func(oauth *MockOAuthExchanger, users *MockUserRepository) {
				oauth.On("Exchange", mock.Anything, "code-1").Return("", errors.New("provider down"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUpstream,
		},
		{
			name: "storage failure",
			setupMocks: func(oauth *MockOAuthExchanger, users *MockUserRepository) {
				oauth.On("Exchange", mock.Anything, "code-1").Return("tok-1", nil)
				users.On("GetByToken", mock.Anything, "tok-1").Return(nil, errors.New("db down"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oauth := new(MockOAuthExchanger)
			users := new(MockUserRepository)
			tt.setupMocks(oauth, users)

			svc := NewAuthService(sessionSecret, new(MockTransactor)).
				WithOAuth(oauth).
				WithUserRepo(users)

			session, err := svc.CompleteLogin(context.Background(), "code-1")

			if tt.expectedError {
				require.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				return
			}

			require.Nil(t, err)
			claims, parseErr := auth.VerifySessionToken(sessionSecret, session)
			require.NoError(t, parseErr)
			assert.Equal(t, tt.expectedUserID, claims.UserID)
		})
	}
}

func TestAuthService_UserFromSession(t *testing.T) {
	users := new(MockUserRepository)
	users.On("Get", mock.Anything, int64(7)).Return(&repository.User{ID: 7, AccessToken: "tok-1"}, nil)
	users.On("Get", mock.Anything, int64(8)).Return(nil, repository.ErrNotFound)

	svc := NewAuthService(sessionSecret, new(MockTransactor)).WithUserRepo(users)

	token, err := auth.GenerateSessionToken(sessionSecret, 7, sessionTTL)
	require.NoError(t, err)

	user, serviceErr := svc.UserFromSession(context.Background(), token)
	require.Nil(t, serviceErr)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "tok-1", user.AccessToken)

	// Session pointing at a deleted user is unauthorized.
	stale, err := auth.GenerateSessionToken(sessionSecret, 8, sessionTTL)
	require.NoError(t, err)

	_, serviceErr = svc.UserFromSession(context.Background(), stale)
	require.NotNil(t, serviceErr)
	assert.Equal(t, ErrorCodeUnauthorized, serviceErr.Code)

	// Token signed with a different secret is unauthorized.
	forged, err := auth.GenerateSessionToken("other-secret", 7, sessionTTL)
	require.NoError(t, err)

	_, serviceErr = svc.UserFromSession(context.Background(), forged)
	require.NotNil(t, serviceErr)
	assert.Equal(t, ErrorCodeUnauthorized, serviceErr.Code)
}

func TestAuthService_Logout(t *testing.T) {
	users := new(MockUserRepository)
	users.On("Delete", mock.Anything, int64(7)).Return(nil)
	users.On("Delete", mock.Anything, int64(8)).Return(repository.ErrNotFound)

	svc := NewAuthService(sessionSecret, new(MockTransactor)).WithUserRepo(users)

	assert.Nil(t, svc.Logout(context.Background(), 7))

	// Logging out twice is a no-op, not an error.
	assert.Nil(t, svc.Logout(context.Background(), 8))
}
