package services

import (
	"errors"
	"fmt"
)

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyVerified    = errors.New("you are already verified")
	ErrNotVerified        = errors.New("you are not a verified user")
	ErrNoCodeIssued       = errors.New("no code has been issued")
	ErrCodeExpired        = errors.New("code has expired")
	ErrCodeMismatch       = errors.New("invalid verification code")
	ErrDeliveryFailed     = errors.New("failed to send code")
)

// ThrottledError — send cooldown is still running for the slot.
type ThrottledError struct {
	SecondsRemaining int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting a new code", e.SecondsRemaining)
}

// LockedError — too many failed attempts, slot is locked out.
type LockedError struct {
	MinutesRemaining int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("too many attempts, try again in %d minute(s)", e.MinutesRemaining)
}
