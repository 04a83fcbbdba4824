package pagination

import "errors"

// ErrInvalidRequest is the single category for contradictory or out-of-range page requests.
var ErrInvalidRequest = errors.New("bad pagination request")

// RequestError carries the reason a page request was rejected and unwraps to ErrInvalidRequest.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string { return ErrInvalidRequest.Error() + ": " + e.Reason }
func (e *RequestError) Unwrap() error { return ErrInvalidRequest }

func invalid(reason string) error { return &RequestError{Reason: reason} }

// Reason returns the rejection reason of a pagination error, or "" for any other error.
func Reason(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}
