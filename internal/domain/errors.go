package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned by stores when an insert hits a unique constraint.
	// Callers that rely on uniqueness for idempotency translate it into a status.
	ErrDuplicate = errors.New("duplicate row")

	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("balance mutation rejected")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUnknownReferralCode = errors.New("unknown referral code")
	ErrSelfReferral        = errors.New("cannot use your own referral code")
	ErrUnknownItem         = errors.New("unknown catalog item")
	ErrUnknownTable        = errors.New("unknown table")
)

// ValidationError is a rejected input, caught before any remote call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InsufficientBalanceError carries the numbers behind a rejected debit.
type InsufficientBalanceError struct {
	UserID    string
	Available int64
	Requested int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %d, requested %d", e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsClientError reports whether err was caused by the caller rather than the store.
func IsClientError(err error) bool {
	return IsValidation(err) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrUnknownReferralCode) ||
		errors.Is(err, ErrSelfReferral) ||
		errors.Is(err, ErrUnknownItem)
}
