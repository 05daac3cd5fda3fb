package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrSourceStatus = errors.New("source returned non-success status")

	ErrInvalidStatus   = errors.New("invalid review status")
	ErrEmptyViewName   = errors.New("saved view name is empty")
	ErrViewNotFound    = errors.New("saved view not found")
	ErrNothingToExport = errors.New("no reviews to export for the current view")
)
