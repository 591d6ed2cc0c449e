package source

import "errors"

var (
	// ErrUnknownSource is returned when a configured source is not registered.
	ErrUnknownSource = errors.New("unknown source")
	// ErrDuplicateSource is returned when a name is registered twice.
	ErrDuplicateSource = errors.New("duplicate source")
	// ErrUnrecognizedMarkup is returned when a page has none of the expected
	// structure.
	ErrUnrecognizedMarkup = errors.New("unrecognized markup")
	// ErrNoFetcher is returned by strategies whose fetcher is not configured.
	ErrNoFetcher = errors.New("fetcher not configured")
)
