package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/wesleyorama2/restclient/internal/http"
	"github.com/wesleyorama2/restclient/internal/stats"
	"github.com/wesleyorama2/restclient/pkg/jsonpath"
)

// Formatter is responsible for formatting requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool
	colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  NewColorScheme(noColor),
	}
}

// FormatRequest formats a request descriptor for display
func (f *Formatter) FormatRequest(req *http.RequestDescriptor) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "▶ REQUEST: %s %s\n",
		f.colors.Method.Sprint(req.TransportMethod()),
		f.colors.URL.Sprint(req.URL))

	if f.Verbose || len(req.Header) > 0 {
		buf.WriteString("  Headers:\n")
		if f.Verbose && req.UserAgent != "" {
			f.writeHeader(&buf, "User-Agent", req.UserAgent)
		}
		for _, line := range req.Header {
			name, value, _ := strings.Cut(line, ":")
			f.writeHeader(&buf, name, strings.TrimSpace(value))
		}
	}

	if f.Verbose && req.UserPwd != "" {
		user, _, _ := strings.Cut(req.UserPwd, ":")
		fmt.Fprintf(&buf, "  Auth: basic (%s)\n", user)
	}

	if req.SendsBody() && req.Body != "" {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(req.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats an executed client's response for display
func (f *Formatter) FormatResponse(resp *http.Client) string {
	var buf strings.Builder

	if msg := resp.TransportError(); msg != "" {
		fmt.Fprintf(&buf, "%s %s\n", ErrorIcon(f.NoColor), f.colors.Error.Sprintf("TRANSPORT ERROR: %s", msg))
		return buf.String()
	}

	env := resp.Response()
	if env == nil {
		return ""
	}
	info := resp.Info()

	if f.Verbose {
		// interim responses (100 Continue, redirects) come first
		lines := resp.StatusLines()
		for i := 0; i < len(lines)-1; i++ {
			fmt.Fprintf(&buf, "◀ %s\n", lines[i])
		}
	}

	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms)\n",
		f.statusColor(env).Sprint(env.Status()),
		env.GetTotalTimeMillis())

	if f.Verbose {
		t := info.Timing
		buf.WriteString("  Timing:\n")
		fmt.Fprintf(&buf, "    DNS Lookup:         %dms\n", t.DNSLookupTime.Milliseconds())
		fmt.Fprintf(&buf, "    TCP Connection:     %dms\n", t.TCPConnectTime.Milliseconds())
		fmt.Fprintf(&buf, "    TLS Handshake:      %dms\n", t.TLSHandshakeTime.Milliseconds())
		fmt.Fprintf(&buf, "    Time to First Byte: %dms\n", t.TimeToFirstByte.Milliseconds())
		fmt.Fprintf(&buf, "    Content Transfer:   %dms\n", t.ContentTransferTime.Milliseconds())
		fmt.Fprintf(&buf, "    Total:              %dms\n", t.TotalTime.Milliseconds())
		if info.RedirectCount > 0 {
			fmt.Fprintf(&buf, "  Redirects: %d (final URL %s)\n", info.RedirectCount, info.EffectiveURL)
		}

		headers := resp.Headers()
		buf.WriteString("  Headers:\n")
		for _, key := range sortedKeys(headers) {
			for _, value := range headers[key] {
				f.writeHeader(&buf, key, value)
			}
		}

		if format, err := resp.Format(); err == nil {
			fmt.Fprintf(&buf, "  Format: %s\n", format)
		}
	}

	if body := resp.Body(); len(body) > 0 {
		buf.WriteString("  Body:\n  ")
		buf.WriteString(f.renderBody(resp))
		buf.WriteString("\n")
	}

	return buf.String()
}

// renderBody pretty-prints JSON bodies; other formats are shown as
// received unless verbose, where the decoded form is shown as JSON.
func (f *Formatter) renderBody(resp *http.Client) string {
	body := string(resp.Body())
	if format, err := resp.Format(); err == nil && format == "json" {
		return formatJSONString(body)
	}
	if f.Verbose {
		if v, err := resp.Decoded(); err == nil {
			if out, err := json.MarshalIndent(v, "  ", "  "); err == nil {
				return string(out)
			}
		}
	}
	return body
}

// FormatExtractions lists extracted values in expression order
func (f *Formatter) FormatExtractions(exprs []jsonpath.Expression, values map[string]any) string {
	if len(exprs) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("  Extracted:\n")
	for _, e := range exprs {
		v, ok := values[e.Name]
		if !ok {
			fmt.Fprintf(&buf, "    %s %s = %s\n", ErrorIcon(f.NoColor), f.colors.Label.Sprint(e.Name), f.colors.Error.Sprint("<not found>"))
			continue
		}
		fmt.Fprintf(&buf, "    %s = %s\n", f.colors.Label.Sprint(e.Name), jsonpath.String(v))
	}
	return buf.String()
}

// FormatValidation reports a schema validation outcome
func (f *Formatter) FormatValidation(err error) string {
	if err == nil {
		return fmt.Sprintf("  Schema: %s %s\n", SuccessIcon(f.NoColor), f.colors.Success.Sprint("valid"))
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "  Schema: %s %s\n", ErrorIcon(f.NoColor), f.colors.Error.Sprint("invalid"))
	for _, line := range strings.Split(err.Error(), "; ") {
		fmt.Fprintf(&buf, "    - %s\n", line)
	}
	return buf.String()
}

// FormatSummary formats the latency summary of repeated executions
func (f *Formatter) FormatSummary(s stats.Summary) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s %d requests, %d failed (%.1f%%), %.1f req/s\n",
		f.colors.Highlight.Sprint("■ SUMMARY:"), s.Requests, s.Failed, s.ErrorRate*100, s.RPS)
	fmt.Fprintf(&buf, "  Latency: min %s  p50 %s  p90 %s  p95 %s  p99 %s  max %s\n",
		s.Latency.Min, s.Latency.P50, s.Latency.P90, s.Latency.P95, s.Latency.P99, s.Latency.Max)
	fmt.Fprintf(&buf, "  Mean: %s (±%s)\n", s.Latency.Mean, s.Latency.StdDev)

	codes := make([]int, 0, len(s.StatusCodes))
	for code := range s.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	buf.WriteString("  Status codes:")
	for _, code := range codes {
		label := fmt.Sprint(code)
		if code == 0 {
			label = "none"
		}
		fmt.Fprintf(&buf, " %s×%d", label, s.StatusCodes[code])
	}
	buf.WriteString("\n")
	return buf.String()
}

func (f *Formatter) writeHeader(buf *strings.Builder, key, value string) {
	fmt.Fprintf(buf, "    %s: %s\n", f.colors.HeaderKey.Sprint(key), f.colors.HeaderValue.Sprint(value))
}

func (f *Formatter) statusColor(env *http.Envelope) interface{ Sprint(...any) string } {
	switch {
	case env.IsSuccess():
		return f.colors.StatusOK
	case env.IsRedirect():
		return f.colors.StatusWarn
	default:
		return f.colors.StatusError
	}
}

func sortedKeys(h http.ResponseHeader) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
