package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/models"
	"github.com/nkiryanov/moneytracker/internal/repository"
)

type RecordRepo struct {
	DB DBTX
}

const createRecord = `-- name: CreateRecord
INSERT INTO records (amount, category, description, user_id)
VALUES ($1, $2, $3, $4)
RETURNING id, amount, category, description, date, user_id
`

func (r *RecordRepo) CreateRecord(ctx context.Context, arg repository.CreateRecordParams) (models.Record, error) {
	rows, _ := r.DB.Query(ctx, createRecord, arg.Amount, arg.Category, arg.Description, arg.UserID)
	record, err := pgx.CollectOneRow(rows, rowToRecord)
	if err != nil {
		return record, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

const listRecords = `-- name: ListRecords
SELECT id, amount, category, description, date, user_id FROM records
WHERE user_id = $1
ORDER BY date, id
`

func (r *RecordRepo) ListRecords(ctx context.Context, userID int64) ([]models.Record, error) {
	rows, _ := r.DB.Query(ctx, listRecords, userID)
	records, err := pgx.CollectRows(rows, rowToRecord)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return records, nil
}

// Ownership is part of the filter, so other user's record looks exactly like a missing one
const deleteRecord = `-- name: DeleteRecord
DELETE FROM records
WHERE id = $1 AND user_id = $2
RETURNING id
`

func (r *RecordRepo) DeleteRecord(ctx context.Context, recordID int64, userID int64) error {
	rows, _ := r.DB.Query(ctx, deleteRecord, recordID, userID)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])

	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.ErrRecordNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func rowToRecord(row pgx.CollectableRow) (models.Record, error) {
	var r models.Record
	err := row.Scan(&r.ID, &r.Amount, &r.Category, &r.Description, &r.Date, &r.UserID)
	return r, err
}
