package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/restclient/internal/http"
	"github.com/wesleyorama2/restclient/internal/stats"
	"github.com/wesleyorama2/restclient/pkg/jsonpath"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output value
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *http.RequestDescriptor) string
	FormatResponse(resp *http.Client) string
	FormatExtractions(exprs []jsonpath.Expression, values map[string]any) string
	FormatValidation(err error) string
	FormatSummary(s stats.Summary) string
}

// RequestData represents the structured data of a request
type RequestData struct {
	Method    string   `json:"method" yaml:"method"`
	URL       string   `json:"url" yaml:"url"`
	Headers   []string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      string   `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp string   `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents detailed timing information for a request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of a response. Headers with
// a single value are rendered as a string, repeated headers as a list.
type ResponseData struct {
	StatusCode     int            `json:"statusCode" yaml:"statusCode"`
	StatusLines    []string       `json:"statusLines,omitempty" yaml:"statusLines,omitempty"`
	Headers        map[string]any `json:"headers,omitempty" yaml:"headers,omitempty"`
	Format         string         `json:"format,omitempty" yaml:"format,omitempty"`
	Body           any            `json:"body,omitempty" yaml:"body,omitempty"`
	DecodeError    string         `json:"decodeError,omitempty" yaml:"decodeError,omitempty"`
	TransportError string         `json:"transportError,omitempty" yaml:"transportError,omitempty"`
	EffectiveURL   string         `json:"effectiveUrl,omitempty" yaml:"effectiveUrl,omitempty"`
	Redirects      int            `json:"redirects,omitempty" yaml:"redirects,omitempty"`
	Timing         *TimingData    `json:"timing,omitempty" yaml:"timing,omitempty"`
	Timestamp      string         `json:"timestamp" yaml:"timestamp"`
}

// ValidationData represents a schema validation outcome
type ValidationData struct {
	Valid  bool     `json:"valid" yaml:"valid"`
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewRequestData builds the structured form of a request descriptor
func NewRequestData(req *http.RequestDescriptor) RequestData {
	data := RequestData{
		Method:    req.TransportMethod(),
		URL:       req.URL,
		Headers:   req.Header,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if req.SendsBody() {
		data.Body = req.Body
	}
	return data
}

// NewResponseData builds the structured form of an executed client. The
// body is the decoded value when decoding succeeds and the raw text
// otherwise. Timing is included when verbose.
func NewResponseData(resp *http.Client, verbose bool) ResponseData {
	data := ResponseData{
		Timestamp:      time.Now().Format(time.RFC3339),
		TransportError: resp.TransportError(),
	}
	env := resp.Response()
	if env == nil || data.TransportError != "" {
		return data
	}

	data.StatusCode = env.StatusCode()
	data.StatusLines = resp.StatusLines()
	data.Headers = make(map[string]any, len(env.Headers))
	for key, values := range env.Headers {
		if len(values) == 1 {
			data.Headers[key] = values[0]
		} else {
			data.Headers[key] = values
		}
	}

	if len(env.Body) > 0 {
		data.Format, _ = resp.Format()
		if v, err := resp.Decoded(); err == nil {
			data.Body = v
		} else {
			data.Body = string(env.Body)
			data.DecodeError = err.Error()
		}
	}

	info := resp.Info()
	data.EffectiveURL = info.EffectiveURL
	data.Redirects = info.RedirectCount
	if verbose {
		t := info.Timing
		data.Timing = &TimingData{
			DNSLookup:       t.DNSLookupTime.Milliseconds(),
			TCPConnection:   t.TCPConnectTime.Milliseconds(),
			TLSHandshake:    t.TLSHandshakeTime.Milliseconds(),
			TimeToFirstByte: t.TimeToFirstByte.Milliseconds(),
			ContentTransfer: t.ContentTransferTime.Milliseconds(),
			Total:           t.TotalTime.Milliseconds(),
		}
	}
	return data
}

func newValidationData(err error) ValidationData {
	if err == nil {
		return ValidationData{Valid: true}
	}
	return ValidationData{Valid: false, Errors: strings.Split(err.Error(), "; ")}
}

// extractionData keeps expression order when marshalled
func extractionData(exprs []jsonpath.Expression, values map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(exprs))
	for _, e := range exprs {
		entry := map[string]any{"name": e.Name, "path": e.Path}
		if v, ok := values[e.Name]; ok {
			entry["value"] = v
		} else {
			entry["found"] = false
		}
		out = append(out, entry)
	}
	return out
}

// JSONFormatter formats output as JSON documents, one per call
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(kind string, v any) string {
	doc := map[string]any{kind: v}
	var out []byte
	var err error
	if f.Pretty {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`+"\n", fmt.Sprintf("failed to marshal %s: %v", kind, err))
	}
	return string(out) + "\n"
}

// FormatRequest formats a request as JSON; only emitted when verbose
func (f *JSONFormatter) FormatRequest(req *http.RequestDescriptor) string {
	if !f.Verbose {
		return ""
	}
	return f.marshal("request", NewRequestData(req))
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Client) string {
	return f.marshal("response", NewResponseData(resp, f.Verbose))
}

// FormatExtractions formats extracted values as JSON
func (f *JSONFormatter) FormatExtractions(exprs []jsonpath.Expression, values map[string]any) string {
	if len(exprs) == 0 {
		return ""
	}
	return f.marshal("extracted", extractionData(exprs, values))
}

// FormatValidation formats a schema validation outcome as JSON
func (f *JSONFormatter) FormatValidation(err error) string {
	return f.marshal("schema", newValidationData(err))
}

// FormatSummary formats a latency summary as JSON
func (f *JSONFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal("summary", s)
}

// YAMLFormatter formats output as YAML documents, one per call
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(kind string, v any) string {
	out, err := yaml.Marshal(map[string]any{kind: v})
	if err != nil {
		return fmt.Sprintf("error: failed to marshal %s: %v\n", kind, err)
	}
	return "---\n" + string(out)
}

// FormatRequest formats a request as YAML; only emitted when verbose
func (f *YAMLFormatter) FormatRequest(req *http.RequestDescriptor) string {
	if !f.Verbose {
		return ""
	}
	return f.marshal("request", NewRequestData(req))
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Client) string {
	return f.marshal("response", NewResponseData(resp, f.Verbose))
}

// FormatExtractions formats extracted values as YAML
func (f *YAMLFormatter) FormatExtractions(exprs []jsonpath.Expression, values map[string]any) string {
	if len(exprs) == 0 {
		return ""
	}
	return f.marshal("extracted", extractionData(exprs, values))
}

// FormatValidation formats a schema validation outcome as YAML
func (f *YAMLFormatter) FormatValidation(err error) string {
	return f.marshal("schema", newValidationData(err))
}

// FormatSummary formats a latency summary as YAML
func (f *YAMLFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal("summary", s)
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}
