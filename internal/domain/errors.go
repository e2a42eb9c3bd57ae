package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateEmail  = errors.New("user already exists")
	ErrUpstreamFailure = errors.New("upstream failure")
)
