package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/handlers/render"
	"github.com/nkiryanov/moneytracker/internal/handlers/userctx"
	"github.com/nkiryanov/moneytracker/internal/logger"
	"github.com/nkiryanov/moneytracker/internal/models"
	"github.com/nkiryanov/moneytracker/internal/service/record"
)

type recordResponse struct {
	ID          int64      `json:"id"`
	Amount      float64    `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
}

func newRecordResponse(r models.Record) recordResponse {
	amount, _ := r.Amount.Float64()
	res := recordResponse{
		ID:          r.ID,
		Amount:      amount,
		Category:    r.Category,
		Description: r.Description,
	}
	if !r.Date.IsZero() {
		res.Date = &r.Date
	}
	return res
}

func handleListRecords(recordService recordService, logger logger.Logger) http.Handler {
	type response struct {
		Records []recordResponse `json:"records"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		records, err := recordService.List(r.Context(), user)
		if err != nil {
			logger.Error("failed to list records", "user_id", user.ID, "error", err)
			render.ServiceError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		res := response{Records: make([]recordResponse, 0, len(records))}
		for _, rec := range records {
			res.Records = append(res.Records, newRecordResponse(rec))
		}

		render.JSON(w, res)
	})
}

type createRecordRequest struct {
	// Number or numeric string
	Amount      *decimal.Decimal `json:"amount"`
	Category    string           `json:"category" validate:"max=50"`
	Description string           `json:"description" validate:"max=200"`
}

func (r *createRecordRequest) Normalize() {
	r.Category = strings.TrimSpace(r.Category)
}

func handleCreateRecord(recordService recordService, logger logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		data, err := render.BindAndValidate[createRecordRequest](w, r)
		if err != nil {
			return
		}

		_, err = recordService.Create(r.Context(), user, record.NewRecord{
			Amount:      data.Amount,
			Category:    data.Category,
			Description: data.Description,
		})
		switch {
		case err == nil:
			render.JSON(w, response{Message: "Record added successfully"})
		case errors.Is(err, apperrors.ErrMissingFields):
			render.ServiceError(w, "Amount and category are required", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrAmountOutOfRange):
			render.ServiceError(w, "Amount is out of range", http.StatusBadRequest)
		default:
			logger.Error("failed to create record", "user_id", user.ID, "error", err)
			render.ServiceError(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func handleDeleteRecord(recordService recordService, logger logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	const notFound = "Record not found or access denied"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		recordID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			render.ServiceError(w, notFound, http.StatusNotFound)
			return
		}

		err = recordService.Delete(r.Context(), user, recordID)
		switch {
		case err == nil:
			render.JSON(w, response{Message: "Record deleted successfully"})
		case errors.Is(err, apperrors.ErrRecordNotFound):
			render.ServiceError(w, notFound, http.StatusNotFound)
		default:
			logger.Error("failed to delete record", "user_id", user.ID, "record_id", recordID, "error", err)
			render.ServiceError(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
