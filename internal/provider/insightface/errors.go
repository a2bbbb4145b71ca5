package insightface

import (
	"errors"
	"fmt"
)

var (
	ErrServiceUnavailable = errors.New("insightface service unavailable")
	ErrInvalidResponse    = errors.New("invalid response from insightface")
	ErrModelNotReady      = errors.New("insightface model not ready")
)

// StatusError is returned when the sidecar answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("insightface returned status %d: %s", e.StatusCode, e.Body)
}

// isClientError reports whether err is a 4xx answer, which is never retried.
func isClientError(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
}
