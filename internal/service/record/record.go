package record

import (
	"context"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/models"
	"github.com/nkiryanov/moneytracker/internal/repository"
)

type RecordService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *RecordService {
	return &RecordService{
		storage: storage,
	}
}

type NewRecord struct {
	// Nil means amount was not provided at all
	Amount      *decimal.Decimal
	Category    string
	Description string
}

// List all records of the user, oldest first
func (s *RecordService) List(ctx context.Context, user models.User) ([]models.Record, error) {
	return s.storage.Record().ListRecords(ctx, user.ID)
}

// Create record owned by the user
// Amount and category are required, amount has to fit float64
func (s *RecordService) Create(ctx context.Context, user models.User, r NewRecord) (models.Record, error) {
	var record models.Record

	if r.Amount == nil || strings.TrimSpace(r.Category) == "" {
		return record, apperrors.ErrMissingFields
	}
	if f, _ := r.Amount.Float64(); math.IsInf(f, 0) {
		return record, apperrors.ErrAmountOutOfRange
	}

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		record, err = storage.Record().CreateRecord(ctx, repository.CreateRecordParams{
			UserID:      user.ID,
			Amount:      *r.Amount,
			Category:    r.Category,
			Description: r.Description,
		})
		return err
	})

	return record, err
}

// Delete record if it belongs to the user
// Returns apperrors.ErrRecordNotFound either the record not exists or owned by someone else
func (s *RecordService) Delete(ctx context.Context, user models.User, recordID int64) error {
	return s.storage.InTx(ctx, func(storage repository.Storage) error {
		return storage.Record().DeleteRecord(ctx, recordID, user.ID)
	})
}
