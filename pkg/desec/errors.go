package desec

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Error kinds. Every error returned by a Client method matches exactly one of
// these with errors.Is.
var (
	// ErrTransport reports a request that never produced an HTTP response
	// (dial, TLS, cancelled context) or whose body could not be read.
	ErrTransport = errors.New("desec: transport error")

	// ErrHTTP reports a non-2xx response on operations without a finer mapping.
	ErrHTTP = errors.New("desec: http error")

	// ErrBadRequest reports a 400 response to a single-object write.
	ErrBadRequest = errors.New("desec: bad request")

	// ErrDomainLimit reports a 403 on domain creation: the account quota is exhausted.
	ErrDomainLimit = errors.New("desec: domain limit reached")

	// ErrNotFound reports a 404 on a request targeting a specific resource.
	ErrNotFound = errors.New("desec: resource not found")

	// ErrBulkRejected reports a 400 on a bulk or partial update. The concrete
	// error is a *BulkError carrying the per-item details.
	ErrBulkRejected = errors.New("desec: bulk request rejected")

	// ErrParse reports a body that did not decode into the expected shape.
	ErrParse = errors.New("desec: failed parsing the response")

	// ErrClientBuild reports a construction failure. No request was sent.
	ErrClientBuild = errors.New("desec: failed to build client")

	// ErrUnexpectedStatus reports a status code the operation does not expect.
	ErrUnexpectedStatus = errors.New("desec: unexpected status")
)

// maxErrorBodyLen bounds the body excerpt included in Error strings.
// The full body is always available in APIError.Body.
const maxErrorBodyLen = 512

// APIError describes a failed call. It is a snapshot taken when the response
// was classified and holds no reference to the live response.
type APIError struct {
	// Kind is one of the Err* sentinels above.
	Kind error
	// Operation is the client method that failed, e.g. "GetRRSet".
	Operation string
	// StatusCode is zero for transport failures.
	StatusCode int
	Header     http.Header
	Body       string
	// Err is the underlying cause, if any (network or decode error).
	Err error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Operation != "" {
		b.WriteString(": ")
		b.WriteString(e.Operation)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		if len(body) > maxErrorBodyLen {
			body = body[:maxErrorBodyLen] + "..."
		}
		b.WriteString(": ")
		b.WriteString(body)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RetryAfter returns the delay requested by the server through the Retry-After
// header, typically on 429 responses. It returns false when the header is
// missing or malformed. The client itself never retries.
func (e *APIError) RetryAfter() (time.Duration, bool) {
	if e.Header == nil {
		return 0, false
	}
	v := strings.TrimSpace(e.Header.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		d := time.Until(at)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// BulkError is returned for 400 responses to bulk writes and partial updates.
// The server's error document is kept uninterpreted. A top-level array lands
// in Details, one element per submitted item with empty objects for accepted
// items. Any other JSON value rejects the request as a whole and lands in
// Document, leaving Details nil.
type BulkError struct {
	APIError
	Details  []json.RawMessage
	Document json.RawMessage
}

// Failures returns the non-empty entries of Details keyed by item index. It is
// empty when the rejection is not itemized.
func (e *BulkError) Failures() map[int]json.RawMessage {
	out := make(map[int]json.RawMessage)
	for i, d := range e.Details {
		if isEmptyJSON(d) {
			continue
		}
		out[i] = d
	}
	return out
}

func isEmptyJSON(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "{}", "[]", "null":
		return true
	}
	return false
}

// IsNotFound reports whether err is an ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
