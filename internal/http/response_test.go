package http

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRaw(t *testing.T) {
	tests := []struct {
		name                string
		raw                 string
		expectedStatusLines []string
		expectedHeaders     ResponseHeader
		expectedBody        string
	}{
		{
			name:                "LF framing",
			raw:                 "HTTP/1.1 200 OK\nContent-Type: application/json\n\n{\"a\":1}",
			expectedStatusLines: []string{"HTTP/1.1 200 OK"},
			expectedHeaders:     ResponseHeader{"content_type": {"application/json"}},
			expectedBody:        `{"a":1}`,
		},
		{
			name:                "CRLF framing",
			raw:                 "HTTP/1.1 201 Created\r\nContent-Type: text/plain\r\nX-Request-Id: abc\r\n\r\nhello",
			expectedStatusLines: []string{"HTTP/1.1 201 Created"},
			expectedHeaders: ResponseHeader{
				"content_type": {"text/plain"},
				"x_request_id": {"abc"},
			},
			expectedBody: "hello",
		},
		{
			name:                "Multiple status lines",
			raw:                 "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok",
			expectedStatusLines: []string{"HTTP/1.1 100 Continue", "HTTP/1.1 200 OK"},
			expectedHeaders:     ResponseHeader{"content_length": {"2"}},
			expectedBody:        "ok",
		},
		{
			name:                "Leading blank lines are skipped",
			raw:                 "\n\nHTTP/1.1 200 OK\nServer: test\n\nbody",
			expectedStatusLines: []string{"HTTP/1.1 200 OK"},
			expectedHeaders:     ResponseHeader{"server": {"test"}},
			expectedBody:        "body",
		},
		{
			name:                "Body is kept verbatim",
			raw:                 "HTTP/1.1 200 OK\nContent-Type: text/plain\n\nline one\n\nline: three\n",
			expectedStatusLines: []string{"HTTP/1.1 200 OK"},
			expectedHeaders:     ResponseHeader{"content_type": {"text/plain"}},
			expectedBody:        "line one\n\nline: three\n",
		},
		{
			name:                "Header value keeps later colons",
			raw:                 "HTTP/1.1 302 Found\nLocation: http://example.com:8080/next\n\n",
			expectedStatusLines: []string{"HTTP/1.1 302 Found"},
			expectedHeaders:     ResponseHeader{"location": {"http://example.com:8080/next"}},
			expectedBody:        "",
		},
		{
			name:                "No separator means no body",
			raw:                 "HTTP/1.1 204 No Content\nServer: test\nX-Trace: 1",
			expectedStatusLines: []string{"HTTP/1.1 204 No Content"},
			expectedHeaders: ResponseHeader{
				"server":  {"test"},
				"x_trace": {"1"},
			},
			expectedBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statusLines, headers, body := ParseRaw([]byte(tt.raw))

			if !reflect.DeepEqual(statusLines, tt.expectedStatusLines) {
				t.Errorf("Expected status lines %v, got %v", tt.expectedStatusLines, statusLines)
			}
			if !reflect.DeepEqual(headers, tt.expectedHeaders) {
				t.Errorf("Expected headers %v, got %v", tt.expectedHeaders, headers)
			}
			if string(body) != tt.expectedBody {
				t.Errorf("Expected body %q, got %q", tt.expectedBody, string(body))
			}
		})
	}
}

func TestParseRaw_RepeatedHeadersFold(t *testing.T) {
	raw := "HTTP/1.1 200 OK\n" +
		"Set-Cookie: a=1\n" +
		"Set-Cookie: b=2\n" +
		"set-cookie: c=3\n" +
		"Content-Type: text/plain\n" +
		"\n" +
		"x"

	_, headers, _ := ParseRaw([]byte(raw))

	assert.Equal(t, []string{"a=1", "b=2", "c=3"}, headers.Values("Set-Cookie"))
	assert.True(t, headers.IsList("set_cookie"))
	assert.False(t, headers.IsList("content_type"))
	assert.Equal(t, "a=1", headers.Get("set-cookie"))
	assert.Equal(t, "text/plain", headers.Get("Content-Type"))
}

func TestParseRaw_TwoRepeatsMakeTwoElementList(t *testing.T) {
	raw := "HTTP/1.1 200 OK\nVia: one\nVia: two\n\n"

	_, headers, _ := ParseRaw([]byte(raw))

	assert.Equal(t, []string{"one", "two"}, headers["via"])
}

func TestNewEnvelope(t *testing.T) {
	raw := []byte("HTTP/1.1 100 Continue\r\n\r\nHTTP/2.0 404 Not Found\r\nContent-Type: text/html\r\n\r\n<p>missing</p>")
	env := NewEnvelope(raw, TransportInfo{StatusCode: 404}, nil)

	assert.Equal(t, "HTTP/2.0 404 Not Found", env.Status())
	assert.Equal(t, 404, env.StatusCode())
	assert.True(t, env.IsClientError())
	assert.False(t, env.IsSuccess())
	assert.True(t, env.HasBody())
	assert.Empty(t, env.TransportError)
}

func TestNewEnvelope_TransportFailure(t *testing.T) {
	env := NewEnvelope(nil, TransportInfo{}, errors.New("dial tcp: connection refused"))

	assert.Equal(t, "dial tcp: connection refused", env.TransportError)
	assert.Empty(t, env.StatusLines)
	assert.Empty(t, env.Body)
	assert.False(t, env.HasBody())
	assert.Equal(t, "", env.Status())
	assert.Equal(t, 0, env.StatusCode())
}

func TestEnvelope_StatusClasses(t *testing.T) {
	tests := []struct {
		status       string
		success      bool
		redirect     bool
		clientError  bool
		serverError  bool
		expectedCode int
	}{
		{status: "HTTP/1.1 200 OK", success: true, expectedCode: 200},
		{status: "HTTP/1.1 301 Moved Permanently", redirect: true, expectedCode: 301},
		{status: "HTTP/1.1 422 Unprocessable Entity", clientError: true, expectedCode: 422},
		{status: "HTTP/1.1 503 Service Unavailable", serverError: true, expectedCode: 503},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			env := &Envelope{StatusLines: []string{tt.status}}
			if env.StatusCode() != tt.expectedCode {
				t.Errorf("Expected code %d, got %d", tt.expectedCode, env.StatusCode())
			}
			if env.IsSuccess() != tt.success {
				t.Errorf("IsSuccess() = %v, want %v", env.IsSuccess(), tt.success)
			}
			if env.IsRedirect() != tt.redirect {
				t.Errorf("IsRedirect() = %v, want %v", env.IsRedirect(), tt.redirect)
			}
			if env.IsClientError() != tt.clientError {
				t.Errorf("IsClientError() = %v, want %v", env.IsClientError(), tt.clientError)
			}
			if env.IsServerError() != tt.serverError {
				t.Errorf("IsServerError() = %v, want %v", env.IsServerError(), tt.serverError)
			}
		})
	}
}
