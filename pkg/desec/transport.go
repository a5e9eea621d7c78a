package desec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/haukened/desec-go/pkg/dnsname"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// request describes one API call and how its status codes are classified.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any // JSON-encoded when non-nil
	accept string
	domain string // span attribute only

	// success lists the statuses that mean success.
	success []int
	// mapped assigns an error kind to specific statuses.
	mapped map[int]error
	// fallback is the kind for other non-2xx statuses. Anything else,
	// including unlisted 2xx codes, is ErrUnexpectedStatus.
	fallback error
}

// response is the extracted outcome of a successful call.
type response struct {
	status int
	header http.Header
	body   []byte
}

// do sends req and classifies the response. It returns a non-nil response
// only for one of req.success.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	ctx, span := c.tracer.Start(ctx, "desec."+req.op)
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", req.method),
		attribute.String("desec.operation", req.op),
	)
	if req.domain != "" {
		span.SetAttributes(attribute.String("desec.domain", req.domain))
	}

	start := time.Now()
	resp, err := c.send(ctx, req)

	fields := map[string]any{
		"operation":   req.op,
		"method":      req.method,
		"path":        req.path,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if resp != nil {
		fields["status"] = resp.status
		span.SetAttributes(attribute.Int("http.status_code", resp.status))
	}

	if err == nil {
		err = classify(req, resp)
	}
	if err != nil {
		fields["error"] = err.Error()
		c.logger.Debug(fields, "deSEC request failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.logger.Debug(fields, "deSEC request completed")
	return resp, nil
}

// send performs the HTTP exchange and reads the whole body.
func (c *Client) send(ctx context.Context, req request) (*response, error) {
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, &APIError{Kind: ErrParse, Operation: req.op, Err: fmt.Errorf(errEncodeBody, err)}
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, &APIError{Kind: ErrTransport, Operation: req.op, Err: fmt.Errorf(errBuildRequest, err)}
	}
	httpReq.Header = c.header.Clone()
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.accept != "" {
		httpReq.Header.Set("Accept", req.accept)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &APIError{Kind: ErrTransport, Operation: req.op, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes+1))
	if err == nil && len(data) > maxResponseBytes {
		err = fmt.Errorf(errBodyTooLarge, maxResponseBytes)
	}
	if err != nil {
		return &response{status: httpResp.StatusCode, header: httpResp.Header.Clone()},
			&APIError{
				Kind:       ErrTransport,
				Operation:  req.op,
				StatusCode: httpResp.StatusCode,
				Header:     httpResp.Header.Clone(),
				Err:        fmt.Errorf(errReadBody, err),
			}
	}

	return &response{
		status: httpResp.StatusCode,
		header: httpResp.Header.Clone(),
		body:   data,
	}, nil
}

// classify maps a response status to nil or a typed error.
func classify(req request, resp *response) error {
	if slices.Contains(req.success, resp.status) {
		return nil
	}

	apiErr := APIError{
		Kind:       ErrUnexpectedStatus,
		Operation:  req.op,
		StatusCode: resp.status,
		Header:     resp.header,
		Body:       string(resp.body),
	}

	if kind, ok := req.mapped[resp.status]; ok {
		apiErr.Kind = kind
	} else if req.fallback != nil && !isSuccess(resp.status) {
		apiErr.Kind = req.fallback
	}

	if errors.Is(apiErr.Kind, ErrBulkRejected) {
		return newBulkError(apiErr, resp.body)
	}
	return &apiErr
}

// newBulkError passes the server's error document through as raw JSON. A
// top-level array is split into its items; any other JSON value is kept as
// the request-level Document. A body that is not JSON at all is a parse error.
func newBulkError(apiErr APIError, body []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err == nil {
		return &BulkError{APIError: apiErr, Details: items}
	}

	var doc json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		apiErr.Kind = ErrParse
		apiErr.Err = err
		return &apiErr
	}
	return &BulkError{APIError: apiErr, Document: doc}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// decode unmarshals a success body into T. Empty and malformed bodies are
// reported as ErrParse.
func decode[T any](op string, resp *response) (T, error) {
	var out T
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, &APIError{
			Kind:       ErrParse,
			Operation:  op,
			StatusCode: resp.status,
			Header:     resp.header,
			Body:       string(resp.body),
			Err:        err,
		}
	}
	return out, nil
}

// segment escapes a single path segment.
func segment(s string) string {
	return url.PathEscape(s)
}

// rrsetSegment renders a subname for use in a path.
func rrsetSegment(subname string) string {
	return url.PathEscape(dnsname.PathSubname(subname))
}
