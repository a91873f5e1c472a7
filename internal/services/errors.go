package services

import "errors"

var (
	ErrBettingClosed       = errors.New("betting is closed until the next cycle")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTooManyPending      = errors.New("too many pending bets, wait for some to resolve")
	ErrRegistrationClosed  = errors.New("registration is currently closed")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserNotFound        = errors.New("user not found")
)
