package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"
)

// Transport executes a resolved request and returns the raw response:
// status line(s), headers, a blank line and the body.
type Transport interface {
	Send(ctx context.Context, req *RequestDescriptor) ([]byte, TransportInfo, error)
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, req *RequestDescriptor) ([]byte, TransportInfo, error)

// Send calls f(ctx, req).
func (f TransportFunc) Send(ctx context.Context, req *RequestDescriptor) ([]byte, TransportInfo, error) {
	return f(ctx, req)
}

const maxRedirects = 10

// HTTPTransport sends requests with net/http and frames the result as raw
// HTTP/1.x text.
type HTTPTransport struct {
	base *http.Transport
}

// NewHTTPTransport creates a transport on a clone of http.DefaultTransport.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{base: http.DefaultTransport.(*http.Transport).Clone()}
}

// Send executes req and returns the framed response with detailed timing information
func (t *HTTPTransport) Send(ctx context.Context, req *RequestDescriptor) ([]byte, TransportInfo, error) {
	var info TransportInfo

	var body io.Reader
	if req.SendsBody() {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequest(req.TransportMethod(), req.URL, body)
	if err != nil {
		return nil, info, err
	}

	for _, line := range req.Header {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		httpReq.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if req.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", req.UserAgent)
	}
	if req.SendsBody() && req.Body != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if req.UserPwd != "" {
		user, pass, _ := strings.Cut(req.UserPwd, ":")
		httpReq.SetBasicAuth(user, pass)
	}

	// Initialize timing info
	info.Timing.StartTime = time.Now()

	var dnsStart, connectStart, tlsHandshakeStart time.Time
	var dnsDone, connectDone bool
	lastPhaseEnd := info.Timing.StartTime

	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			dnsEnd := time.Now()
			info.Timing.DNSLookupTime = dnsEnd.Sub(dnsStart)
			dnsDone = true
			lastPhaseEnd = dnsEnd
		},
		ConnectStart: func(network, addr string) {
			connectStart = time.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil && !connectStart.IsZero() {
				connectEnd := time.Now()
				info.Timing.TCPConnectTime = connectEnd.Sub(connectStart)
				connectDone = true
				lastPhaseEnd = connectEnd
			}
		},
		TLSHandshakeStart: func() {
			if connectDone || dnsDone {
				tlsHandshakeStart = time.Now()
			}
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil && !tlsHandshakeStart.IsZero() {
				tlsHandshakeEnd := time.Now()
				info.Timing.TLSHandshakeTime = tlsHandshakeEnd.Sub(tlsHandshakeStart)
				lastPhaseEnd = tlsHandshakeEnd
			}
		},
		GotFirstResponseByte: func() {
			// Measured from the end of the last completed phase
			info.Timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}

	if ctx == nil {
		ctx = context.Background()
	}
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(ctx, trace))

	resp, err := t.client(req, &info).Do(httpReq)
	if err != nil {
		info.Timing.TotalTime = time.Since(info.Timing.StartTime)
		return nil, info, err
	}
	defer resp.Body.Close()

	contentTransferStart := time.Now()
	bodyBytes, err := io.ReadAll(resp.Body)
	info.Timing.ContentTransferTime = time.Since(contentTransferStart)
	info.Timing.TotalTime = time.Since(info.Timing.StartTime)
	if err != nil {
		return nil, info, fmt.Errorf("reading response body: %w", err)
	}

	info.StatusCode = resp.StatusCode
	info.Proto = resp.Proto
	info.ContentLength = int64(len(bodyBytes))
	if resp.Request != nil && resp.Request.URL != nil {
		info.EffectiveURL = resp.Request.URL.String()
	}

	return frameResponse(resp, bodyBytes), info, nil
}

func (t *HTTPTransport) client(req *RequestDescriptor, info *TransportInfo) *http.Client {
	rt := t.base
	if req.InsecureSkipVerify {
		rt = t.base.Clone()
		if rt.TLSClientConfig == nil {
			rt.TLSClientConfig = &tls.Config{}
		}
		rt.TLSClientConfig.InsecureSkipVerify = true
	}

	return &http.Client{
		Transport: rt,
		Timeout:   req.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if !req.FollowRedirects {
				return http.ErrUseLastResponse
			}
			if len(via) >= maxRedirects {
				return errors.New("stopped after 10 redirects")
			}
			info.RedirectCount = len(via)
			return nil
		},
	}
}

// frameResponse renders resp as "<proto> <status>", the header block, a
// blank line and the body, all CRLF-delimited. A response without headers
// gets a Content-Length so the blank line still separates the body.
func frameResponse(resp *http.Response, body []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s\r\n", resp.Proto, resp.Status)
	if len(resp.Header) == 0 {
		fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(body))
	}
	_ = resp.Header.Write(&buf)
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes()
}
