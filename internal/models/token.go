package models

import (
	"time"
)

// Signed access token issued on login
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
