package domain

import "errors"

var (
	ErrNotFound        = errors.New("config_not_found")
	ErrInvalidKey      = errors.New("invalid_config_key")
	ErrInvalidValue    = errors.New("invalid_config_value")
	ErrInvalidRate     = errors.New("invalid_rate")
	ErrInvalidSequence = errors.New("invalid_numbering_sequence")
)
