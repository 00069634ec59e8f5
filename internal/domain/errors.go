package domain

import "errors"

var (
	ErrUnknownCommand    = errors.New("unknown command")
	ErrUnknownVersion    = errors.New("unknown migration version")
	ErrUnsupportedDriver = errors.New("unsupported driver")
	ErrVersionRequired   = errors.New("a migration version is required")
)
