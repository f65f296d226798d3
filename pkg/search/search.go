// Package search defines the web search client used to ground replies and
// the plain-text rendering of its results.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NoResultsMarker is rendered in place of results when nothing qualified.
const NoResultsMarker = "No results found."

// Result is one organic search hit.
type Result struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Searcher issues a single web search.
//
// An empty slice means the upstream answered with no usable results; any
// transport, status or decoding failure is returned as *UpstreamError.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Format renders results as "<title>: <link>" lines in input order,
// skipping entries missing either field. It returns NoResultsMarker when no
// entry qualifies.
func Format(results []Result) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if r.Title == "" || r.Link == "" {
			continue
		}
		lines = append(lines, r.Title+": "+r.Link)
	}
	if len(lines) == 0 {
		return NoResultsMarker
	}
	return strings.Join(lines, "\n")
}

// UpstreamError is a failed call to the search API. It is distinct from an
// empty result set.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("search upstream failed: %v", e.Err)
	case e.Body != "":
		return fmt.Sprintf("search upstream returned status %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("search upstream returned status %d", e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError reports whether err is, or wraps, an *UpstreamError.
func IsUpstreamError(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}
