package reservation

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/terrabook/pitch-booking-backend/internal/pkg/apperror"
)

var ErrInvalidConfirmToken = apperror.New(http.StatusUnauthorized, "invalid or expired confirmation token")

type confirmClaims struct {
	ReservationID string `json:"reservation_id"`
	jwt.RegisteredClaims
}

// ConfirmTokenManager signs the short-lived tokens embedded in
// confirmation email links.
type ConfirmTokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewConfirmTokenManager(secret string) *ConfirmTokenManager {
	return &ConfirmTokenManager{
		secret: []byte(secret),
		ttl:    time.Hour,
	}
}

// Generate creates a signed token for the reservation.
func (m *ConfirmTokenManager) Generate(reservationID string) (string, error) {
	now := time.Now().UTC()

	claims := &confirmClaims{
		ReservationID: reservationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   reservationID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign confirmation token: %w", err)
	}
	return signed, nil
}

// Parse validates the token and returns the reservation ID it covers.
func (m *ConfirmTokenManager) Parse(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &confirmClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", t.Method)
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse confirmation token: %w", err)
	}

	claims, ok := token.Claims.(*confirmClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid confirmation token")
	}
	return claims.ReservationID, nil
}
