package tradebook

import (
	"errors"
	"fmt"

	"github.com/etnz/tradebook/date"
)

var (
	// ErrRateUnavailable is returned when an exchange rate cannot be obtained.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	// ErrPriceUnavailable is returned when a ticker has no market data.
	ErrPriceUnavailable = errors.New("market price unavailable")
	// ErrInvalidTransaction is returned when a transaction misses a field required by its state.
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// RateError details a failed currency conversion.
type RateError struct {
	Currency string
	On       date.Date
	Err      error
}

func (e *RateError) Error() string {
	msg := fmt.Sprintf("no %s rate on %s", e.Currency, e.On)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RateError) Is(target error) bool { return target == ErrRateUnavailable }
func (e *RateError) Unwrap() error        { return e.Err }

// PriceError details a ticker that could not be priced.
type PriceError struct {
	Ticker string
	Err    error
}

func (e *PriceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no market price for %s", e.Ticker)
	}
	return fmt.Sprintf("no market price for %s: %v", e.Ticker, e.Err)
}

func (e *PriceError) Is(target error) bool { return target == ErrPriceUnavailable }
func (e *PriceError) Unwrap() error        { return e.Err }

// ValidationError details why a transaction was rejected.
type ValidationError struct {
	ID     int64
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("transaction #%d: %s %s", e.ID, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidTransaction }
