package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Financial entry owned by exactly one user
type Record struct {
	ID          int64
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
	UserID      int64
}
