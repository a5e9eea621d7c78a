// Package desec is a typed client for the deSEC DNS hosting API
// (https://desec.io/api/v1).
//
// A Client is immutable after construction and safe for concurrent use. Each
// method issues exactly one HTTP request and maps the outcome either to a
// typed result or to an error matching one of the Err* sentinels.
package desec

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http/httpguts"
)

const (
	// DefaultBaseURL is the versioned REST root of the public deSEC service.
	DefaultBaseURL = "https://desec.io/api/v1"

	// DefaultUserAgent identifies this client to the API.
	DefaultUserAgent = "desec-go"

	tracerName = "github.com/haukened/desec-go/pkg/desec"
)

// Error message constants for consistent error handling
const (
	errInvalidToken   = "token cannot be used as a header value"
	errInvalidOptions = "invalid options: %w"
	errEncodeBody     = "encode request body: %w"
	errBuildRequest   = "build request: %w"
	errReadBody       = "read response body: %w"
	errBodyTooLarge   = "response body exceeds %d bytes"
)

// Logger is the logging interface the client writes request traces to.
// It is satisfied by the project's log facade; the token is never logged.
type Logger interface {
	Debug(fields map[string]any, msg string)
}

type nopLogger struct{}

func (nopLogger) Debug(map[string]any, string) {}

// Options configures NewWithOptions.
type Options struct {
	// required parameters
	Token string

	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL string `validate:"omitempty,url,startswith=http"`
	// UserAgent overrides DefaultUserAgent.
	UserAgent string `validate:"omitempty,printascii"`

	// options to inject for testing and instrumentation purposes
	HTTPClient     *http.Client         `validate:"-"`
	Logger         Logger               `validate:"-"`
	TracerProvider trace.TracerProvider `validate:"-"`
}

// Client talks to the deSEC API on behalf of one token.
type Client struct {
	baseURL string
	header  http.Header // persistent headers, cloned per request
	http    *http.Client
	logger  Logger
	tracer  trace.Tracer
}

// New returns a client for the public deSEC API authenticated with token.
func New(token string) (*Client, error) {
	return NewWithOptions(Options{Token: token})
}

// NewWithOptions returns a client configured by opts. It fails with
// ErrClientBuild, before any network activity, if the token cannot be
// encoded into the Authorization header or the options are invalid.
func NewWithOptions(opts Options) (*Client, error) {
	authorization := "Token " + opts.Token
	if !httpguts.ValidHeaderFieldValue(authorization) {
		return nil, &APIError{Kind: ErrClientBuild, Err: fmt.Errorf(errInvalidToken)}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&opts); err != nil {
		return nil, &APIError{Kind: ErrClientBuild, Err: fmt.Errorf(errInvalidOptions, err)}
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	header := make(http.Header)
	header.Set("Authorization", authorization)
	header.Set("User-Agent", opts.UserAgent)
	header.Set("Accept", "application/json")

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		header:  header,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
		tracer:  opts.TracerProvider.Tracer(tracerName),
	}, nil
}

// BaseURL returns the REST root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}
