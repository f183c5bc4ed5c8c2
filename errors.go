package tokenfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/etnz/tokenfolio/bucket"
)

var (
	// ErrInvalidDateRange is returned when the start of a range is after its end.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrPriceProviderUnavailable marks a tier whose prices could not be fetched.
	// It is a warning: valuation proceeds with forward-filled or zero prices.
	ErrPriceProviderUnavailable = errors.New("price provider unavailable")
	// ErrInsufficientLotBalance is returned when a disposal exceeds the tracked lots.
	ErrInsufficientLotBalance = errors.New("insufficient lot balance")
	// ErrMalformedTransaction marks a transaction rejected from the computation.
	ErrMalformedTransaction = errors.New("malformed transaction")
)

// DateRangeError reports an inverted date range.
type DateRangeError struct {
	From, To time.Time
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("%v: from %s is after to %s", ErrInvalidDateRange, e.From.Format(time.RFC3339), e.To.Format(time.RFC3339))
}

func (e *DateRangeError) Unwrap() error { return ErrInvalidDateRange }

// CheckRange returns a DateRangeError if from is after to.
func CheckRange(from, to time.Time) error {
	if from.After(to) {
		return &DateRangeError{From: from, To: to}
	}
	return nil
}

// PriceProviderError reports the failure of one tier's price request.
type PriceProviderError struct {
	Tier bucket.Tier
	Err  error
}

func (e *PriceProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s: no data", ErrPriceProviderUnavailable, e.Tier)
	}
	return fmt.Sprintf("%v: %s: %v", ErrPriceProviderUnavailable, e.Tier, e.Err)
}

func (e *PriceProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPriceProviderUnavailable}
	}
	return []error{ErrPriceProviderUnavailable, e.Err}
}

// LotBalanceError reports a disposal that could not be matched against lots.
type LotBalanceError struct {
	Token     string
	Missing   Quantity // quantity left to dispose when the queue ran out
	Timestamp time.Time
}

func (e *LotBalanceError) Error() string {
	msg := fmt.Sprintf("%v: %s is short of %s", ErrInsufficientLotBalance, e.Token, e.Missing)
	if !e.Timestamp.IsZero() {
		msg += " on " + e.Timestamp.Format(time.RFC3339)
	}
	return msg
}

func (e *LotBalanceError) Unwrap() error { return ErrInsufficientLotBalance }

// MalformedTransactionError reports why a single transaction was rejected.
type MalformedTransactionError struct {
	Index  int // position in the feed
	Hash   string
	Reason string
}

func (e *MalformedTransactionError) Error() string {
	id := e.Hash
	if id == "" {
		id = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("%v %s: %s", ErrMalformedTransaction, id, e.Reason)
}

func (e *MalformedTransactionError) Unwrap() error { return ErrMalformedTransaction }
