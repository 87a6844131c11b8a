package http

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// ResponseHeader maps a normalized response header key (lower-case, '-'
// replaced by '_') to its values in arrival order. A key seen once holds a
// single value.
type ResponseHeader map[string][]string

// Get returns the first value for key. key is normalized, so "Content-Type"
// and "content_type" are equivalent.
func (h ResponseHeader) Get(key string) string {
	if v := h[normalizeHeaderKey(key)]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns a copy of every value for key.
func (h ResponseHeader) Values(key string) []string {
	return append([]string(nil), h[normalizeHeaderKey(key)]...)
}

// IsList reports whether key was repeated.
func (h ResponseHeader) IsList(key string) bool {
	return len(h[normalizeHeaderKey(key)]) > 1
}

func (h ResponseHeader) add(key, value string) {
	h[key] = append(h[key], value)
}

func normalizeHeaderKey(key string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(key, "-", "_")))
}

// TimingInfo holds the phase durations of one exchange.
type TimingInfo struct {
	StartTime           time.Time
	DNSLookupTime       time.Duration
	TCPConnectTime      time.Duration
	TLSHandshakeTime    time.Duration
	TimeToFirstByte     time.Duration
	ContentTransferTime time.Duration
	TotalTime           time.Duration
}

// TransportInfo is the metadata a Transport reports next to the raw bytes.
type TransportInfo struct {
	StatusCode    int
	Proto         string
	EffectiveURL  string
	RedirectCount int
	ContentLength int64
	Timing        TimingInfo
}

// Envelope is the parsed result of one execution.
type Envelope struct {
	StatusLines []string
	Headers     ResponseHeader
	Body        []byte
	Info        TransportInfo
	// TransportError is empty unless the transport failed
	TransportError string
}

// NewEnvelope parses raw when present and records the transport outcome.
func NewEnvelope(raw []byte, info TransportInfo, err error) *Envelope {
	env := &Envelope{Info: info, Headers: ResponseHeader{}}
	if raw != nil {
		env.StatusLines, env.Headers, env.Body = ParseRaw(raw)
	}
	if err != nil {
		env.TransportError = err.Error()
	}
	return env
}

// ParseRaw splits raw HTTP output into status lines, headers and body.
//
// Lines starting with "HTTP" are status lines. A blank line ends the header
// block only once at least one header was collected; everything after it is
// the body, verbatim. Without such a separator the body is empty.
func ParseRaw(raw []byte) (statusLines []string, headers ResponseHeader, body []byte) {
	statusLines = []string{}
	headers = ResponseHeader{}

	pos := 0
	for pos < len(raw) {
		line := raw[pos:]
		next := len(raw)
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = pos + i + 1
		}
		pos = next

		trimmed := strings.TrimSpace(string(line))
		switch {
		case trimmed == "":
			if len(headers) > 0 {
				return statusLines, headers, append([]byte(nil), raw[pos:]...)
			}
		case bytes.HasPrefix(line, []byte("HTTP")):
			statusLines = append(statusLines, trimmed)
		default:
			key, value, _ := strings.Cut(string(line), ":")
			headers.add(normalizeHeaderKey(key), strings.TrimSpace(value))
		}
	}
	return statusLines, headers, nil
}

// Status returns the last status line, the one of the final response.
func (e *Envelope) Status() string {
	if len(e.StatusLines) == 0 {
		return ""
	}
	return e.StatusLines[len(e.StatusLines)-1]
}

// StatusCode parses the code from the last status line, falling back to
// the transport's report.
func (e *Envelope) StatusCode() int {
	fields := strings.Fields(e.Status())
	if len(fields) >= 2 {
		if code, err := strconv.Atoi(fields[1]); err == nil {
			return code
		}
	}
	return e.Info.StatusCode
}

// HasBody reports whether a non-empty body was received.
func (e *Envelope) HasBody() bool {
	return len(e.Body) > 0
}

// IsSuccess returns true if the status code is in the 2xx range
func (e *Envelope) IsSuccess() bool {
	code := e.StatusCode()
	return code >= 200 && code < 300
}

// IsRedirect returns true if the status code is in the 3xx range
func (e *Envelope) IsRedirect() bool {
	code := e.StatusCode()
	return code >= 300 && code < 400
}

// IsClientError returns true if the status code is in the 4xx range
func (e *Envelope) IsClientError() bool {
	code := e.StatusCode()
	return code >= 400 && code < 500
}

// IsServerError returns true if the status code is in the 5xx range
func (e *Envelope) IsServerError() bool {
	code := e.StatusCode()
	return code >= 500 && code < 600
}

// GetTotalTimeMillis returns the total exchange time in milliseconds
func (e *Envelope) GetTotalTimeMillis() int64 {
	return e.Info.Timing.TotalTime.Milliseconds()
}
