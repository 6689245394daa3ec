package service

import (
	"errors"

	"github.com/iliyamo/vacation-rental/internal/repository"
)

// Sentinel errors returned by services. Callers test them with errors.Is;
// the HTTP layer maps each to one status code.
var (
	ErrNotFound            = repository.ErrNotFound
	ErrConflict            = repository.ErrConflict
	ErrInvalidInput        = errors.New("invalid input")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ErrTimeout is a kind of ErrUpstreamUnavailable.
var ErrTimeout error = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string { return "upstream timeout" }

func (timeoutError) Unwrap() error { return ErrUpstreamUnavailable }
