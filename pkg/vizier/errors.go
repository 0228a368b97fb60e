package vizier

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyQuery is returned when the query text is empty or whitespace only.
var ErrEmptyQuery = errors.New("vizier: query text is empty")

// TransportError reports that the request could not be sent or the response
// could not be read (DNS, connection refused, timeout, cancelled context).
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("vizier: request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response. Body holds the raw response body.
type HTTPStatusError struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

func (e *HTTPStatusError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("vizier: non-success status code %d", e.StatusCode)
	}
	return fmt.Sprintf("vizier: non-success status code %d: %s", e.StatusCode, msg)
}

// MalformedResponseError reports a body that is not JSON or does not have the
// metadata/data envelope.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vizier: unexpected response schema: %s: %v", e.Reason, e.Err)
	}
	return "vizier: unexpected response schema: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// DeserializationError reports a row that could not be coerced into the target type.
// Field and Column are empty when the failure is not attributable to one field.
type DeserializationError struct {
	Row      int
	Field    string
	Column   string
	Expected string
	Actual   string
	Err      error
}

func (e *DeserializationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "vizier: failed to deserialize row %d", e.Row)
	if e.Field != "" {
		fmt.Fprintf(&b, " field %s", e.Field)
		if e.Column != "" && e.Column != e.Field {
			fmt.Fprintf(&b, " (column %q)", e.Column)
		}
	} else if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// errorKind names the error class for telemetry and logs.
func errorKind(err error) string {
	var (
		transportErr *TransportError
		statusErr    *HTTPStatusError
		malformedErr *MalformedResponseError
		decodeErr    *DeserializationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "empty_query"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &malformedErr):
		return "malformed_response"
	case errors.As(err, &decodeErr):
		return "deserialization"
	default:
		return "other"
	}
}
