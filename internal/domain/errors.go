package domain

import "errors"

var (
	ErrDataUnavailable       = errors.New("data unavailable")
	ErrTitleNotFound         = errors.New("title not found")
	ErrPredictionUnavailable = errors.New("prediction unavailable")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUserNotFound          = errors.New("user not found")
	ErrModelUnavailable      = errors.New("model unavailable")
)
