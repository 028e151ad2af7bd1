package e2etest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned by the client when the server answers with an unexpected status code.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// StatusCode extracts the HTTP status from err, or returns 0 if err does not carry one.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func readBody(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:mnd // enough for error payloads.
	if err != nil {
		return ""
	}
	return string(b)
}
