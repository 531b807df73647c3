package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/models"
)

const (
	defaultAccessHeaderName = "x-access-token"
)

type Config struct {
	// Request header carrying access token (not a bearer scheme, raw token)
	// If not set than default is used
	AccessHeaderName string
}

type tokenManager interface {
	Issue(userID int64) (models.IssuedToken, error)

	// Has to return apperrors.ErrInvalidToken for any not valid token
	Parse(access string) (userID int64, err error)
}

type userService interface {
	Register(ctx context.Context, username string, password string) (models.User, error)

	// Has to return apperrors.ErrInvalidCredentials if user not found or password not match
	Login(ctx context.Context, username string, password string) (models.User, error)

	// Has to return apperrors.ErrUserNotFound if user not found
	GetUser(ctx context.Context, userID int64) (models.User, error)
}

type AuthService struct {
	accessHeaderName string

	tokenManager tokenManager
	userService  userService
}

func NewService(cfg Config, tokenManager tokenManager, userService userService) (*AuthService, error) {
	if tokenManager == nil || userService == nil {
		return nil, errors.New("token manager and user service must not be nil")
	}

	if cfg.AccessHeaderName == "" {
		cfg.AccessHeaderName = defaultAccessHeaderName
	}

	return &AuthService{
		accessHeaderName: cfg.AccessHeaderName,
		tokenManager:     tokenManager,
		userService:      userService,
	}, nil
}

// Register new user
// No token is issued: user has to login explicitly
func (s *AuthService) Register(ctx context.Context, username string, password string) (models.User, error) {
	return s.userService.Register(ctx, username, password)
}

// Login user and issue access token
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.IssuedToken, error) {
	user, err := s.userService.Login(ctx, username, password)
	if err != nil {
		return models.IssuedToken{}, err
	}

	return s.tokenManager.Issue(user.ID)
}

// Authenticate request: read token from header, validate it and load the user it was issued for
// Returns apperrors.ErrMissingToken or apperrors.ErrInvalidToken on auth failures
// A valid token of a user that no longer exists is treated as invalid token
func (s *AuthService) Authenticate(ctx context.Context, r *http.Request) (models.User, error) {
	access := r.Header.Get(s.accessHeaderName)
	if access == "" {
		return models.User{}, apperrors.ErrMissingToken
	}

	userID, err := s.tokenManager.Parse(access)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.userService.GetUser(ctx, userID)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, fmt.Errorf("%w: user %d not found", apperrors.ErrInvalidToken, userID)
	default:
		return models.User{}, fmt.Errorf("can't load user from token. Err: %w", err)
	}
}

// Set access token to request the way Authenticate expects it
func (s *AuthService) SetTokenToRequest(r *http.Request, token models.IssuedToken) {
	r.Header.Set(s.accessHeaderName, token.Value)
}
