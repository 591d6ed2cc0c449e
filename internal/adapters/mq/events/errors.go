package events

import "errors"

var (
	// ErrHubClosed is returned when publishing to a closed hub.
	ErrHubClosed = errors.New("event hub closed")
	// ErrDecode is returned for pub/sub payloads that are not events.
	ErrDecode = errors.New("decode event")
)
