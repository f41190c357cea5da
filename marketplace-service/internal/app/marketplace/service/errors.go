package service

import "errors"

var (
	ErrMissingToken    = errors.New("missing authorization token")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidID       = errors.New("invalid id")
	ErrForbidden       = errors.New("access forbidden")
	ErrUserExists      = errors.New("user is already in collection")
	ErrUserNotFound    = errors.New("user not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrBookingNotFound = errors.New("booking not found")
)
