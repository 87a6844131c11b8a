package http

import (
	"regexp"
	"time"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "restclient/0.2.0"

// DefaultFormatRegex extracts the subtype from a `type/subtype[;...]`
// Content-Type value; the second capture group is the format identifier.
var DefaultFormatRegex = regexp.MustCompile(`(\w+)/(\w+)(;[.+])?`)

// Header maps a request header name to one or more values. Names are used
// exactly as given.
type Header map[string][]string

// Set replaces the values stored under key.
func (h Header) Set(key string, values ...string) {
	h[key] = append([]string(nil), values...)
}

// Add appends a value to key.
func (h Header) Add(key, value string) {
	h[key] = append(h[key], value)
}

// Clone returns a deep copy.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	c := make(Header, len(h))
	for k, v := range h {
		c[k] = append([]string(nil), v...)
	}
	return c
}

// Params holds request parameters. Values may be scalars, slices (repeated
// parameters) or nested maps.
type Params map[string]any

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = cloneParam(v)
	}
	return c
}

func cloneParam(v any) any {
	switch t := v.(type) {
	case Params:
		return t.Clone()
	case map[string]any:
		return map[string]any(Params(t).Clone())
	case map[string]string:
		c := make(map[string]string, len(t))
		for k, s := range t {
			c[k] = s
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = cloneParam(e)
		}
		return c
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Override adjusts a fully built request descriptor. Overrides run after
// every computed setting, so they can replace any of them.
type Override func(*RequestDescriptor)

// OverrideTimeout bounds the whole exchange, connection through body read.
func OverrideTimeout(d time.Duration) Override {
	return func(r *RequestDescriptor) {
		r.Timeout = d
	}
}

// OverrideFollowRedirects toggles redirect following.
func OverrideFollowRedirects(follow bool) Override {
	return func(r *RequestDescriptor) {
		r.FollowRedirects = follow
	}
}

// OverrideInsecureSkipVerify disables TLS certificate verification.
func OverrideInsecureSkipVerify(skip bool) Override {
	return func(r *RequestDescriptor) {
		r.InsecureSkipVerify = skip
	}
}

// Config is the base configuration of a client. A client never writes its
// Config after construction; every execution works on a Clone.
type Config struct {
	Headers             Header
	Parameters          Params
	BaseURL             string
	Format              string
	FormatRegex         *regexp.Regexp
	Decoders            *Registry
	Username            string
	Password            string
	Overrides           []Override
	BuildIndexedQueries bool
	UserAgent           string
}

// DefaultTimeout bounds requests of clients built from DefaultConfig.
const DefaultTimeout = 30 * time.Second

// DefaultConfig returns the configuration used by NewClient before options
// apply. Its only override sets DefaultTimeout; WithTimeout overrides it.
func DefaultConfig() Config {
	return Config{
		Headers:     Header{},
		Parameters:  Params{},
		FormatRegex: DefaultFormatRegex,
		Decoders:    NewRegistry(),
		Overrides:   []Override{OverrideTimeout(DefaultTimeout)},
		UserAgent:   DefaultUserAgent,
	}
}

// Clone deep-copies the header and parameter defaults and the override
// list. The decoder registry is shared by reference.
func (c Config) Clone() Config {
	clone := c
	clone.Headers = c.Headers.Clone()
	clone.Parameters = c.Parameters.Clone()
	if c.Overrides != nil {
		clone.Overrides = append([]Override(nil), c.Overrides...)
	}
	return clone
}
