package scrape

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// Kind classifies fetch failures.
type Kind string

const (
	KindTimeout        Kind = "timeout"
	KindNetwork        Kind = "network_error"
	KindHTTPStatus     Kind = "http_status"
	KindMarkerNotFound Kind = "marker_not_found"
	KindMalformedValue Kind = "malformed_value"
)

// Sentinels to match fetch errors by kind with errors.Is.
var (
	ErrTimeout        = errors.New(string(KindTimeout))
	ErrNetwork        = errors.New(string(KindNetwork))
	ErrHTTPStatus     = errors.New(string(KindHTTPStatus))
	ErrMarkerNotFound = errors.New(string(KindMarkerNotFound))
	ErrMalformedValue = errors.New(string(KindMalformedValue))
)

var sentinels = map[Kind]error{
	KindTimeout:        ErrTimeout,
	KindNetwork:        ErrNetwork,
	KindHTTPStatus:     ErrHTTPStatus,
	KindMarkerNotFound: ErrMarkerNotFound,
	KindMalformedValue: ErrMalformedValue,
}

// FetchError is the error returned by Fetcher.Fetch.
type FetchError struct {
	Kind Kind
	// Status is the HTTP status code, for KindHTTPStatus.
	Status int
	// Raw is the unparsed attribute value, for KindMalformedValue.
	Raw string
	// Err is the underlying error, if any.
	Err error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("unsuccessful response: status %d (%s)",
			e.Status, http.StatusText(e.Status))
	case KindMarkerNotFound:
		return fmt.Sprintf("%s element with %s attribute not found", Selector, Attribute)
	case KindMalformedValue:
		return fmt.Sprintf("malformed %s value %q", Attribute, e.Raw)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}

	return string(e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTimeout) and friends work.
func (e *FetchError) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// ParsePercent parses locale formatted percentages like "37,5%",
// "42.0 %" or " 12 ".
func ParsePercent(raw string) (float64, error) {
	s := strings.ReplaceAll(raw, ",", ".")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}

	return v, nil
}
