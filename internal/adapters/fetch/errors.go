package fetch

import "errors"

var (
	// ErrInvalidURL is returned for empty or unparsable URLs.
	ErrInvalidURL = errors.New("invalid url")
	// ErrBadStatus is returned for non-2xx responses.
	ErrBadStatus = errors.New("bad status")
	// ErrBrowserUnavailable is returned when no headless browser can start.
	ErrBrowserUnavailable = errors.New("browser unavailable")
)
