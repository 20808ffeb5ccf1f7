package api

import (
	"errors"
	"net/http"

	"github.com/ubitquity/Zoltaran-Speaks/internal/wish"
)

// Error type identifiers returned in the JSON error envelope.
const (
	ErrTypeValidation           = "validation"
	ErrTypeUnauthorized         = "unauthorized"
	ErrTypeNotConfigured        = "not_configured"
	ErrTypePaused               = "paused"
	ErrTypeAlreadyPending       = "already_pending"
	ErrTypeInsufficientCredits  = "insufficient_credits"
	ErrTypeNotFound             = "not_found"
	ErrTypeWrongOwner           = "wrong_owner"
	ErrTypeTooSoon              = "too_soon"
	ErrTypeInvalidReveal        = "invalid_reveal"
	ErrTypeInvalidProbabilities = "invalid_probabilities"
	ErrTypeInsufficientTreasury = "insufficient_treasury"
	ErrTypeInvalidPaymentMemo   = "invalid_payment_memo"
	ErrTypeUnacceptedAsset      = "unaccepted_asset"
	ErrTypeInsufficientPayment  = "insufficient_payment"
	ErrTypeInternal             = "internal"
)

// APIError is the structured JSON error body.
type APIError struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

func (e APIError) Error() string {
	return e.Type + ": " + e.Message
}

// classify maps game-engine errors onto HTTP status and error type.
// Every entry is a terminal validation failure; nothing here is
// retryable.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, wish.ErrNotConfigured):
		return http.StatusServiceUnavailable, ErrTypeNotConfigured
	case errors.Is(err, wish.ErrPaused):
		return http.StatusForbidden, ErrTypePaused
	case errors.Is(err, wish.ErrAlreadyPending):
		return http.StatusConflict, ErrTypeAlreadyPending
	case errors.Is(err, wish.ErrInsufficientCredits):
		return http.StatusConflict, ErrTypeInsufficientCredits
	case errors.Is(err, wish.ErrNotFound):
		return http.StatusNotFound, ErrTypeNotFound
	case errors.Is(err, wish.ErrWrongOwner):
		return http.StatusForbidden, ErrTypeWrongOwner
	case errors.Is(err, wish.ErrTooSoon):
		return http.StatusConflict, ErrTypeTooSoon
	case errors.Is(err, wish.ErrInvalidReveal):
		return http.StatusBadRequest, ErrTypeInvalidReveal
	case errors.Is(err, wish.ErrInvalidCommitHash):
		return http.StatusBadRequest, ErrTypeValidation
	case errors.Is(err, wish.ErrInvalidProbabilities):
		return http.StatusBadRequest, ErrTypeInvalidProbabilities
	case errors.Is(err, wish.ErrInsufficientTreasury):
		return http.StatusConflict, ErrTypeInsufficientTreasury
	case errors.Is(err, wish.ErrInvalidPaymentMemo), errors.Is(err, wish.ErrInvalidWishCount):
		return http.StatusBadRequest, ErrTypeInvalidPaymentMemo
	case errors.Is(err, wish.ErrUnacceptedAsset):
		return http.StatusBadRequest, ErrTypeUnacceptedAsset
	case errors.Is(err, wish.ErrInsufficientPayment):
		return http.StatusConflict, ErrTypeInsufficientPayment
	default:
		return http.StatusInternalServerError, ErrTypeInternal
	}
}
