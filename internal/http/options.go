package http

import (
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

// Option configures a Client
type Option func(*Client)

// WithBaseURL sets the URL every request path is joined to
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.config.BaseURL = baseURL
	}
}

// WithHeader sets a default header; several values send the header once per value
func WithHeader(key string, values ...string) Option {
	return func(c *Client) {
		c.config.Headers.Set(key, values...)
	}
}

// WithHeaders merges h into the default headers
func WithHeaders(h Header) Option {
	return func(c *Client) {
		for k, v := range h {
			c.config.Headers.Set(k, v...)
		}
	}
}

// WithParameter sets a default parameter
func WithParameter(key string, value any) Option {
	return func(c *Client) {
		c.config.Parameters[key] = cloneParam(value)
	}
}

// WithParameters merges p into the default parameters
func WithParameters(p Params) Option {
	return func(c *Client) {
		for k, v := range p {
			c.config.Parameters[k] = cloneParam(v)
		}
	}
}

// WithFormat fixes the response format and appends ".<format>" to request URLs
func WithFormat(format string) Option {
	return func(c *Client) {
		c.config.Format = format
	}
}

// WithFormatRegex replaces the Content-Type pattern; its second group is the format
func WithFormatRegex(re *regexp.Regexp) Option {
	return func(c *Client) {
		if re != nil {
			c.config.FormatRegex = re
		}
	}
}

// WithDecoder registers d for format on the client's registry
func WithDecoder(format string, d Decoder) Option {
	return func(c *Client) {
		c.config.Decoders.Register(format, d)
	}
}

// WithRegistry makes the client use reg, shared by reference
func WithRegistry(reg *Registry) Option {
	return func(c *Client) {
		if reg != nil {
			c.config.Decoders = reg
		}
	}
}

// WithBasicAuth sets credentials; both must be non-empty to be sent
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.config.Username = username
		c.config.Password = password
	}
}

// WithOverride appends transport overrides, applied after everything else
func WithOverride(overrides ...Override) Option {
	return func(c *Client) {
		c.config.Overrides = append(c.config.Overrides, overrides...)
	}
}

// WithTimeout sets the timeout for every request
func WithTimeout(timeout time.Duration) Option {
	return WithOverride(OverrideTimeout(timeout))
}

// WithIndexedQueries keeps numeric indices in repeated query keys
func WithIndexedQueries(indexed bool) Option {
	return func(c *Client) {
		c.config.BuildIndexedQueries = indexed
	}
}

// WithUserAgent sets the User-Agent sent with every request
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.config.UserAgent = userAgent
	}
}

// WithTransport replaces the default net/http transport
func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithLogger sets the logger used for request lifecycle events
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables Prometheus metrics
func WithMetrics(m *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = m
	}
}
