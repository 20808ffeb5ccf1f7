package wish

import "errors"

// Terminal validation failures. None of these are retryable: the caller
// must resubmit with corrected inputs. Any of them aborts the whole
// operation with no partial state change.
var (
	ErrNotConfigured        = errors.New("game not configured")
	ErrPaused               = errors.New("game is paused")
	ErrAlreadyPending       = errors.New("pending commit exists - reveal it or wait for expiry")
	ErrInsufficientCredits  = errors.New("no wish credits available")
	ErrNotFound             = errors.New("commit not found")
	ErrWrongOwner           = errors.New("commit belongs to another player")
	ErrTooSoon              = errors.New("must wait at least one block before revealing")
	ErrInvalidReveal        = errors.New("hash mismatch - invalid secret or wish CID")
	ErrInvalidCommitHash    = errors.New("commit hash must be 64 hex characters")
	ErrInvalidProbabilities = errors.New("probability weights exceed 100%")
	ErrInsufficientTreasury = errors.New("insufficient treasury balance")
	ErrInvalidPaymentMemo   = errors.New("unrecognized payment memo")
	ErrInvalidWishCount     = errors.New("wish count must be between 1 and 1000")
	ErrUnacceptedAsset      = errors.New("token not accepted")
	ErrInsufficientPayment  = errors.New("payment does not cover requested wishes")
)
