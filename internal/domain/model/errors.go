package model

import "errors"

// Sentinel error kinds shared across the search pipeline.
var (
	// ErrValidation rejects session parameters before any session exists.
	ErrValidation = errors.New("invalid search parameters")

	// ErrProfileExtraction means the resume text yields no usable tokens.
	ErrProfileExtraction = errors.New("profile extraction failed")

	// ErrUnknownLocation is returned for location names missing from the table.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrSourceFailure wraps any fault inside a source adapter. It never
	// escapes the adapter; it is carried by Diagnostic.
	ErrSourceFailure = errors.New("source failure")
)
