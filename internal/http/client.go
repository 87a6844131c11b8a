package http

import (
	"context"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Client is both a request configuration and, once executed, the holder of
// one response.
//
// A base client built by NewClient only carries configuration. Every verb method
// returns a new Client holding a clone of that configuration plus the
// request it sent and the response it got back; the receiver is never
// modified, so one base client can serve any number of calls, including
// concurrent ones.
//
// The response body is decoded lazily, at most once, by the first call to
// Decoded, Iterator, All, Lookup or Has.
type Client struct {
	config    Config
	transport Transport
	logger    logrus.FieldLogger
	metrics   *MetricsCollector

	request  *RequestDescriptor
	response *Envelope

	decodeOnce sync.Once
	format     string
	decoded    any
	decodeErr  error
}

// NewClient creates a new client with the given options
func NewClient(options ...Option) *Client {
	return NewFromConfig(DefaultConfig(), options...)
}

// NewFromConfig creates a client from cfg. Missing header and parameter
// maps, pattern and registry are filled with defaults.
func NewFromConfig(cfg Config, options ...Option) *Client {
	cfg = cfg.Clone()
	if cfg.Headers == nil {
		cfg.Headers = Header{}
	}
	if cfg.Parameters == nil {
		cfg.Parameters = Params{}
	}
	if cfg.FormatRegex == nil {
		cfg.FormatRegex = DefaultFormatRegex
	}
	if cfg.Decoders == nil {
		cfg.Decoders = NewRegistry()
	}

	client := &Client{
		config:    cfg,
		transport: NewHTTPTransport(),
		logger:    discardLogger(),
	}

	// Apply options
	for _, option := range options {
		option(client)
	}

	return client
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// With derives a new base client with extra options. The decoder registry
// is copied so registrations on the derived client stay local to it.
func (c *Client) With(options ...Option) *Client {
	cfg := c.config.Clone()
	cfg.Decoders = cfg.Decoders.Clone()
	derived := &Client{
		config:    cfg,
		transport: c.transport,
		logger:    c.logger,
		metrics:   c.metrics,
	}
	for _, option := range options {
		option(derived)
	}
	return derived
}

// RegisterDecoder binds d to format on the client's registry. Instances
// already produced by this client share the registry and see the binding
// on their first decode.
func (c *Client) RegisterDecoder(format string, d Decoder) {
	c.config.Decoders.Register(format, d)
}

// Get executes a GET request
func (c *Client) Get(ctx context.Context, url string, params any, headers Header) *Client {
	return c.Execute(ctx, url, "GET", params, headers)
}

// Post executes a POST request
func (c *Client) Post(ctx context.Context, url string, params any, headers Header) *Client {
	return c.Execute(ctx, url, "POST", params, headers)
}

// Put executes a PUT request
func (c *Client) Put(ctx context.Context, url string, params any, headers Header) *Client {
	return c.Execute(ctx, url, "PUT", params, headers)
}

// Patch executes a PATCH request
func (c *Client) Patch(ctx context.Context, url string, params any, headers Header) *Client {
	return c.Execute(ctx, url, "PATCH", params, headers)
}

// Delete executes a DELETE request
func (c *Client) Delete(ctx context.Context, url string, params any, headers Header) *Client {
	return c.Execute(ctx, url, "DELETE", params, headers)
}

// Head executes a HEAD request
func (c *Client) Head(ctx context.Context, url string, params any, headers Header) *Client {
	return c.Execute(ctx, url, "HEAD", params, headers)
}

// Execute builds one request from the client's configuration and the
// per-call input, sends it and returns a new Client holding the response.
//
// Execute does not fail: a transport failure leaves an envelope without
// status lines or body and is reported by TransportError. Decoding errors
// surface only when the body is first read through Decoded, Iterator, All,
// Lookup or Has.
func (c *Client) Execute(ctx context.Context, url, method string, params any, headers Header) *Client {
	if ctx == nil {
		ctx = context.Background()
	}

	derived := &Client{
		config:    c.config.Clone(),
		transport: c.transport,
		logger:    c.logger,
		metrics:   c.metrics,
	}

	req := Build(derived.config, url, method, params, headers)
	derived.request = req

	log := derived.logger.WithFields(logrus.Fields{
		"method": req.TransportMethod(),
		"url":    req.URL,
	})
	log.WithField("headers", len(req.Header)).Debug("request built")

	start := time.Now()
	raw, info, err := derived.transport.Send(ctx, req)
	derived.response = NewEnvelope(raw, info, err)

	if err != nil {
		derived.metrics.RecordTransportError(req.TransportMethod())
		log.WithError(err).Warn("transport error")
		return derived
	}

	derived.metrics.RecordRequest(req.TransportMethod(), derived.response.StatusCode(), time.Since(start))
	log.WithFields(logrus.Fields{
		"status":       derived.response.Status(),
		"status_lines": len(derived.response.StatusLines),
		"body_bytes":   len(derived.response.Body),
	}).Debug("response parsed")

	return derived
}

// Config returns a copy of the client's configuration
func (c *Client) Config() Config {
	return c.config.Clone()
}

// Request returns the descriptor that was sent, nil for a base client
func (c *Client) Request() *RequestDescriptor {
	return c.request
}

// URL returns the fully resolved request URL
func (c *Client) URL() string {
	if c.request == nil {
		return ""
	}
	return c.request.URL
}

// Response returns the parsed response, nil for a base client
func (c *Client) Response() *Envelope {
	return c.response
}

// StatusLines returns every status line received, in order
func (c *Client) StatusLines() []string {
	if c.response == nil {
		return nil
	}
	return append([]string(nil), c.response.StatusLines...)
}

// Headers returns the normalized response headers
func (c *Client) Headers() ResponseHeader {
	if c.response == nil {
		return ResponseHeader{}
	}
	return c.response.Headers
}

// Body returns the raw response body
func (c *Client) Body() []byte {
	if c.response == nil {
		return nil
	}
	return c.response.Body
}

// Info returns the transport metadata
func (c *Client) Info() TransportInfo {
	if c.response == nil {
		return TransportInfo{}
	}
	return c.response.Info
}

// TransportError returns the transport failure message, empty on success
func (c *Client) TransportError() string {
	if c.response == nil {
		return ""
	}
	return c.response.TransportError
}

// Format resolves the body format without decoding
func (c *Client) Format() (string, error) {
	return ResolveFormat(c.config, c.response)
}

// Decoded returns the decoded body: a *decode.Map, a *decode.List or a
// scalar. The decoder runs once; later calls return the cached value or error.
func (c *Client) Decoded() (any, error) {
	if c.response == nil {
		return nil, ErrNoBody
	}
	c.decodeOnce.Do(func() {
		format, err := ResolveFormat(c.config, c.response)
		if err != nil {
			c.decodeErr = err
			return
		}
		c.format = format
		c.decoded, c.decodeErr = Decode(c.config.Decoders, format, string(c.response.Body))
		c.metrics.RecordDecode(format, c.decodeErr)
		c.logger.WithFields(logrus.Fields{
			"format": format,
			"ok":     c.decodeErr == nil,
		}).Debug("response decoded")
	})
	return c.decoded, c.decodeErr
}

// Iterator returns a fresh iterator over the decoded body
func (c *Client) Iterator() (*Iterator, error) {
	v, err := c.Decoded()
	if err != nil {
		return nil, err
	}
	return newIterator(v), nil
}

// All returns the decoded body's top-level entries as a sequence. Each
// range over the sequence starts again from the first entry.
func (c *Client) All() (iter.Seq2[any, any], error) {
	v, err := c.Decoded()
	if err != nil {
		return nil, err
	}
	return func(yield func(any, any) bool) {
		it := newIterator(v)
		for it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
	}, nil
}

// Lookup returns the value stored under key in the decoded body, nil when
// absent. Map bodies take string keys, list bodies integer indices.
func (c *Client) Lookup(key any) (any, error) {
	v, err := c.Decoded()
	if err != nil {
		return nil, err
	}
	value, _ := lookup(v, key)
	return value, nil
}

// Has reports whether key exists in the decoded body
func (c *Client) Has(key any) (bool, error) {
	v, err := c.Decoded()
	if err != nil {
		return false, err
	}
	_, ok := lookup(v, key)
	return ok, nil
}

// Set always fails: decoded responses are immutable
func (c *Client) Set(key, value any) error {
	return ErrImmutableResponse
}

// Unset always fails: decoded responses are immutable
func (c *Client) Unset(key any) error {
	return ErrImmutableResponse
}
