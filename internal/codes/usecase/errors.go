package usecase

import "errors"

var (
	ErrCodeNotFound     = errors.New("code not found")
	ErrCodeExists       = errors.New("code already exists")
	ErrTooManyCodes     = errors.New("cannot generate more than 100 codes at once")
	ErrCountNotPositive = errors.New("count must be positive")
	ErrInvalidPrefix    = errors.New("prefix must be 1-6 characters")
	ErrInvalidDate      = errors.New("invalid date format")
	ErrNoCodesProvided  = errors.New("no codes provided")
)
