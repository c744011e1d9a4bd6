package instagram

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// ErrorKind classifies Graph API failures by how the caller should react.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindTransient
	KindFatal
)

// Graph API error codes that signal throttling. 4 and 17 are the
// application/user request-count limits, 32 the page limit, 613 the
// custom rate limit.
var rateLimitCodes = map[int]struct{}{
	4:   {},
	17:  {},
	32:  {},
	613: {},
}

// Codes the platform documents as safe to retry (1 = unknown error,
// 2 = service temporarily unavailable).
var transientCodes = map[int]struct{}{
	1: {},
	2: {},
}

var (
	ErrMissingContainerID = errors.New("instagram: response contained no container id")
	ErrMissingPostID      = errors.New("instagram: response contained no post id")
)

// APIError is a Graph API error response tagged with its classification.
// Raw keeps the unparsed payload for diagnostics.
type APIError struct {
	Code       int
	Subcode    int
	Type       string
	Message    string
	HTTPStatus int
	RetryAfter time.Duration
	Raw        string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("instagram: api error %d (%s): %s", e.Code, e.Type, e.Message)
	}
	return fmt.Sprintf("instagram: api error, status %d: %s", e.HTTPStatus, e.Raw)
}

func (e *APIError) Kind() ErrorKind {
	if _, ok := rateLimitCodes[e.Code]; ok {
		return KindRateLimited
	}
	if _, ok := transientCodes[e.Code]; ok {
		return KindTransient
	}
	if e.HTTPStatus >= 500 {
		return KindTransient
	}
	if e.Code == 0 && e.Message == "" {
		return KindUnknown
	}
	return KindFatal
}

// IsRateLimited reports whether err carries a rate-limit error code.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind() == KindRateLimited
}

// retriable reports whether a failed request may be attempted again:
// rate limits, transient API codes, 5xx responses and connection errors.
func retriable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind() {
		case KindRateLimited, KindTransient, KindUnknown:
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
