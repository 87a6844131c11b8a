package http

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RequestDescriptor is a fully resolved request, ready for a Transport.
type RequestDescriptor struct {
	// Method is the upper-cased verb (GET, POST, PUT, PATCH, DELETE, HEAD)
	Method string
	// CustomMethod is set to Method for every verb other than GET and POST
	CustomMethod string
	URL          string
	// Header holds one "Name: value" entry per header value
	Header []string
	// Body carries the encoded parameters for every verb except GET
	Body string
	// UserPwd is the "user:pass" basic auth pair, empty when not configured
	UserPwd   string
	UserAgent string

	Timeout            time.Duration
	FollowRedirects    bool
	InsecureSkipVerify bool
}

// SendsBody reports whether Body is transmitted.
func (r *RequestDescriptor) SendsBody() bool {
	return r.Method != "GET"
}

// TransportMethod returns the verb to put on the wire.
func (r *RequestDescriptor) TransportMethod() string {
	if r.CustomMethod != "" {
		return r.CustomMethod
	}
	return r.Method
}

// Build resolves a request from the base configuration and per-call input.
//
// params is treated as a mapping when it is a Params, map[string]any,
// map[string]string, url.Values or nil; a mapping is merged over
// cfg.Parameters and query-encoded. Any other value is used verbatim as the
// payload. For GET the payload is appended to the URL, for every other
// method it becomes the body.
//
// Build never fails: malformed input is passed on to the transport.
func Build(cfg Config, url, method string, params any, headers Header) *RequestDescriptor {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}

	req := &RequestDescriptor{
		Method:          method,
		UserAgent:       cfg.UserAgent,
		FollowRedirects: true,
	}

	if cfg.Username != "" && cfg.Password != "" {
		req.UserPwd = fmt.Sprintf("%s:%s", cfg.Username, cfg.Password)
	}

	req.Header = flattenHeaders(mergeHeaders(cfg.Headers, headers))

	target := url
	if cfg.Format != "" {
		target += "." + cfg.Format
	}

	var payload string
	if p, ok := asParams(params); ok {
		payload = EncodeParams(mergeParams(cfg.Parameters, p), cfg.BuildIndexedQueries)
	} else {
		payload = payloadString(params)
	}

	switch method {
	case "GET":
		if payload != "" {
			if strings.Contains(target, "?") {
				target += "&"
			} else {
				target += "?"
			}
			target += payload
		}
	case "POST":
		req.Body = payload
	default:
		req.CustomMethod = method
		req.Body = payload
	}

	if cfg.BaseURL != "" {
		target = strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(target, "/")
	}
	req.URL = target

	for _, override := range cfg.Overrides {
		if override != nil {
			override(req)
		}
	}

	return req
}

// mergeHeaders overlays call on base; call wins on identical names.
func mergeHeaders(base, call Header) Header {
	merged := make(Header, len(base)+len(call))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range call {
		merged[k] = v
	}
	return merged
}

func flattenHeaders(h Header) []string {
	if len(h) == 0 {
		return nil
	}
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		for _, value := range h[name] {
			lines = append(lines, fmt.Sprintf("%s: %s", name, value))
		}
	}
	return lines
}

// mergeParams overlays call on base; call wins on identical keys.
func mergeParams(base, call Params) Params {
	merged := make(Params, len(base)+len(call))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range call {
		merged[k] = v
	}
	return merged
}
