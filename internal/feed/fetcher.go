package feed

import (
	"context"
	"encoding/json"
	"fmt"
)

// Fetcher defines the interface for fetching raw feed documents.
type Fetcher interface {
	// FetchMissions retrieves the bulk mission document for an ISO date
	// (YYYY-MM-DD) as a mapping from top-level key to raw JSON value.
	FetchMissions(ctx context.Context, date string) (map[string]json.RawMessage, error)
	// FetchDeepDives retrieves the deep dive document for a formatted
	// weekly-rotation timestamp.
	FetchDeepDives(ctx context.Context, stamp string) (json.RawMessage, error)
	Name() string
}

// FetchError describes a failed feed request. StatusCode is 0 for
// network/timeout failures and the HTTP status for non-2xx responses; the
// refresh cache treats both classes identically.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
