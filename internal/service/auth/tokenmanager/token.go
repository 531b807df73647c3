package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/models"
)

const (
	defaultSigningMethod = "HS256"
	defaultAccessTTL     = time.Hour
)

// Access token payload: {"id": <user id>, "exp": <unix seconds>}
type AccessTokenClaims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// Token manager with sensible defaults
type Config struct {
	// Secret key to sign access token
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access token lifetime
	// If not set than default is used
	AccessTTL time.Duration

	// Clock, time.Now if not set
	Now func() time.Time
}

type TokenManager struct {
	key       []byte
	alg       jwt.SigningMethod
	accessTTL time.Duration
	now       func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if _, ok := alg.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing method %q is not supported, symmetric HMAC expected", cfg.Alg)
	}

	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		key:       []byte(cfg.SecretKey),
		alg:       alg,
		accessTTL: cfg.AccessTTL,
		now:       cfg.Now,
	}, nil
}

// Issue signed access token for the user
// Tokens issued for the same user within one second are equal
func (m *TokenManager) Issue(userID int64) (models.IssuedToken, error) {
	expiresAt := m.now().Truncate(time.Second).Add(m.accessTTL)

	token := jwt.NewWithClaims(m.alg, AccessTokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse and validate access token
// Malformed, forged and expired tokens all fail with apperrors.ErrInvalidToken
func (m *TokenManager) Parse(access string) (userID int64, err error) {
	claims := &AccessTokenClaims{}

	_, err = jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	if claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: no user id in token", apperrors.ErrInvalidToken)
	}

	return claims.UserID, nil
}
