package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/models"
	"github.com/nkiryanov/moneytracker/internal/repository"
	"github.com/nkiryanov/moneytracker/internal/service/auth"
)

const MaxUsernameLength = 50

type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage

	// Digest compared against when user not found, so login takes the same time either way
	dummyHash string
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) (*UserService, error) {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	dummyHash, err := hasher.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("can't prepare password hasher. Err: %w", err)
	}

	return &UserService{
		hasher:    hasher,
		storage:   storage,
		dummyHash: dummyHash,
	}, nil
}

// Register new user
// Username is trimmed and has to be unique
func (s *UserService) Register(ctx context.Context, username string, password string) (models.User, error) {
	var user models.User

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return user, apperrors.ErrMissingFields
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return user, apperrors.ErrUsernameTooLong
	}

	// Hashing is slow, keep it out of the transaction
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		_, err := storage.User().GetUserByUsername(ctx, username)
		switch {
		case err == nil:
			return apperrors.ErrUserAlreadyExists
		case !errors.Is(err, apperrors.ErrUserNotFound):
			return err
		}

		// Concurrent registration may still win the race, constraint violation is reported as ErrUserAlreadyExists
		user, err = storage.User().CreateUser(ctx, username, hash)
		return err
	})
	if err != nil {
		return models.User{}, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// Login user by username and password
// Unknown user and wrong password are not distinguished: both are ErrInvalidCredentials
func (s *UserService) Login(ctx context.Context, username string, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, apperrors.ErrMissingFields
	}

	user, err := s.storage.User().GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		return models.User{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, fmt.Errorf("can't load user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// Get user by id
// Returns apperrors.ErrUserNotFound if there is no such user
func (s *UserService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}
