package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/moneytracker/internal/models"
)

// Storage gives access to all repositories sharing the same connection or transaction
type Storage interface {
	User() UserRepo
	Record() RecordRepo

	// Run fn in transaction
	// Commit if fn returns nil, rollback otherwise. Nested calls use savepoints
	InTx(ctx context.Context, fn func(Storage) error) error

	// Check the database answers
	Ping(ctx context.Context) error
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

type CreateRecordParams struct {
	UserID      int64
	Amount      decimal.Decimal
	Category    string
	Description string
}

// Record repository interface
// Every method is scoped by owner: records of other users are invisible
type RecordRepo interface {
	CreateRecord(ctx context.Context, arg CreateRecordParams) (models.Record, error)

	// List user records, oldest first
	ListRecords(ctx context.Context, userID int64) ([]models.Record, error)

	// Delete record only if it belongs to the user
	// Must return apperrors.ErrRecordNotFound if no such record owned by the user
	DeleteRecord(ctx context.Context, recordID int64, userID int64) error
}
