package server

import "errors"

var (
	// ErrInvalidOption is returned for out-of-range server options.
	ErrInvalidOption = errors.New("invalid server option")
)
