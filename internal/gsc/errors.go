package gsc

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// TransportError marks a failure to fetch data from the Search Console API
// for one site and date range. Aggregation treats it as a gap in the report
// rather than a fatal condition.
type TransportError struct {
	SiteURL string
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("search console %s failed for %s: %v", e.Op, e.SiteURL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err as a per-unit fetch failure.
func NewTransportError(siteURL, op string, err error) *TransportError {
	return &TransportError{SiteURL: siteURL, Op: op, Err: err}
}

// IsNotFound reports whether err is an API 404, typically an unverified or
// misspelled property URL.
func IsNotFound(err error) bool {
	return hasStatusCode(err, http.StatusNotFound)
}

// IsPermissionDenied reports whether err is an API 401 or 403.
func IsPermissionDenied(err error) bool {
	return hasStatusCode(err, http.StatusUnauthorized) || hasStatusCode(err, http.StatusForbidden)
}

// IsQuotaExceeded reports whether err is an API 429.
func IsQuotaExceeded(err error) bool {
	return hasStatusCode(err, http.StatusTooManyRequests)
}

func hasStatusCode(err error, code int) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
