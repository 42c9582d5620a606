package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrInvalidPrice   = errors.New("invalid price")
	ErrNoFeedURL      = errors.New("no feed url configured")
	ErrInvalidFeedURL = errors.New("invalid feed url")
)
