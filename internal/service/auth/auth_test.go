package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/models"
	"github.com/nkiryanov/moneytracker/internal/service/auth/tokenmanager"
)

// In-memory user service: username -> user, passwords stored as is
type fakeUsers struct {
	users  map[string]models.User
	getErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]models.User{}}
}

func (f *fakeUsers) Register(_ context.Context, username string, password string) (models.User, error) {
	if _, ok := f.users[username]; ok {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}
	u := models.User{ID: int64(len(f.users) + 1), Username: username, HashedPassword: password, CreatedAt: time.Now()}
	f.users[username] = u
	return u, nil
}

func (f *fakeUsers) Login(_ context.Context, username string, password string) (models.User, error) {
	u, ok := f.users[username]
	if !ok || u.HashedPassword != password {
		return models.User{}, apperrors.ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeUsers) GetUser(_ context.Context, userID int64) (models.User, error) {
	if f.getErr != nil {
		return models.User{}, f.getErr
	}
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func Test_Auth(t *testing.T) {
	newService := func(t *testing.T) (*AuthService, *fakeUsers) {
		tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"})
		require.NoError(t, err, "token manager should be created without errors")

		users := newFakeUsers()
		s, err := NewService(Config{}, tokens, users)
		require.NoError(t, err, "auth service could't be started")

		return s, users
	}

	t.Run("new auth service defaults", func(t *testing.T) {
		s, _ := newService(t)

		require.Equal(t, "x-access-token", s.accessHeaderName, "default access header name should be set")
	})

	t.Run("dependencies required", func(t *testing.T) {
		_, err := NewService(Config{}, nil, nil)

		require.Error(t, err)
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("new user ok", func(t *testing.T) {
			s, _ := newService(t)

			user, err := s.Register(t.Context(), "alice", "pw1")

			require.NoError(t, err, "registering new user should be ok")
			require.Equal(t, "alice", user.Username)
		})

		t.Run("fail if user exists", func(t *testing.T) {
			s, _ := newService(t)
			_, err := s.Register(t.Context(), "alice", "pw1")
			require.NoError(t, err)

			_, err = s.Register(t.Context(), "alice", "other-pwd")

			require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("existing user ok", func(t *testing.T) {
			s, _ := newService(t)
			_, err := s.Register(t.Context(), "alice", "pw1")
			require.NoError(t, err)

			token, err := s.Login(t.Context(), "alice", "pw1")

			require.NoError(t, err)
			require.NotEmpty(t, token.Value, "access token should not be empty")
			require.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 2*time.Second, "token lives one hour")
		})

		t.Run("invalid credentials", func(t *testing.T) {
			s, _ := newService(t)
			_, err := s.Register(t.Context(), "alice", "pw1")
			require.NoError(t, err)

			token, err := s.Login(t.Context(), "alice", "wrong")

			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
			require.Empty(t, token.Value)
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		loggedIn := func(t *testing.T) (*AuthService, *fakeUsers, models.User, models.IssuedToken) {
			s, users := newService(t)
			user, err := s.Register(t.Context(), "alice", "pw1")
			require.NoError(t, err)
			token, err := s.Login(t.Context(), "alice", "pw1")
			require.NoError(t, err)
			return s, users, user, token
		}

		t.Run("valid token ok", func(t *testing.T) {
			s, _, user, token := loggedIn(t)
			r := httptest.NewRequest(http.MethodGet, "/records", nil)
			s.SetTokenToRequest(r, token)

			got, err := s.Authenticate(t.Context(), r)

			require.NoError(t, err)
			require.Equal(t, user.ID, got.ID)
			require.Equal(t, token.Value, r.Header.Get("x-access-token"), "token is sent raw, without scheme")
		})

		t.Run("missing token", func(t *testing.T) {
			s, _, _, _ := loggedIn(t)
			r := httptest.NewRequest(http.MethodGet, "/records", nil)

			_, err := s.Authenticate(t.Context(), r)

			require.ErrorIs(t, err, apperrors.ErrMissingToken)
		})

		t.Run("bearer scheme is not understood", func(t *testing.T) {
			s, _, _, token := loggedIn(t)
			r := httptest.NewRequest(http.MethodGet, "/records", nil)
			r.Header.Set("x-access-token", "Bearer "+token.Value)

			_, err := s.Authenticate(t.Context(), r)

			require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})

		t.Run("garbage token", func(t *testing.T) {
			s, _, _, _ := loggedIn(t)
			r := httptest.NewRequest(http.MethodGet, "/records", nil)
			r.Header.Set("x-access-token", "garbage")

			_, err := s.Authenticate(t.Context(), r)

			require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})

		t.Run("user deleted after token issued", func(t *testing.T) {
			s, users, _, token := loggedIn(t)
			delete(users.users, "alice")
			r := httptest.NewRequest(http.MethodGet, "/records", nil)
			s.SetTokenToRequest(r, token)

			_, err := s.Authenticate(t.Context(), r)

			require.ErrorIs(t, err, apperrors.ErrInvalidToken, "absent user has to be an auth failure")
		})

		t.Run("storage error is not auth failure", func(t *testing.T) {
			s, users, _, token := loggedIn(t)
			users.getErr = errors.New("connection refused")
			r := httptest.NewRequest(http.MethodGet, "/records", nil)
			s.SetTokenToRequest(r, token)

			_, err := s.Authenticate(t.Context(), r)

			require.Error(t, err)
			require.NotErrorIs(t, err, apperrors.ErrInvalidToken)
			require.NotErrorIs(t, err, apperrors.ErrMissingToken)
		})

		t.Run("custom header", func(t *testing.T) {
			tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"})
			require.NoError(t, err)
			users := newFakeUsers()
			s, err := NewService(Config{AccessHeaderName: "X-Token"}, tokens, users)
			require.NoError(t, err)
			_, err = s.Register(t.Context(), "alice", "pw1")
			require.NoError(t, err)
			token, err := s.Login(t.Context(), "alice", "pw1")
			require.NoError(t, err)

			r := httptest.NewRequest(http.MethodGet, "/records", nil)
			r.Header.Set("X-Token", token.Value)
			_, err = s.Authenticate(t.Context(), r)

			require.NoError(t, err)
		})
	})
}
