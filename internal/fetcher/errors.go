package fetcher

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// ErrMalformedResponse marks a response body that cannot be turned into a snapshot.
var ErrMalformedResponse = errors.New("malformed rate response")

// TransientError wraps a connectivity failure that may succeed on retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient network error: " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx answer from the rate API. It is never retried.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("rate api error (%d) for %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("rate api error (%d) for %s", e.StatusCode, e.URL)
}

// FatalFetchError is returned once every retry attempt has failed.
type FatalFetchError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *FatalFetchError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *FatalFetchError) Unwrap() error { return e.Err }

// isTransient reports whether a transport error is worth another attempt.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
