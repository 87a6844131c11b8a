package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/restclient/internal/config"
	"github.com/wesleyorama2/restclient/internal/http"
	"github.com/wesleyorama2/restclient/internal/output"
	"github.com/wesleyorama2/restclient/internal/rate"
	"github.com/wesleyorama2/restclient/internal/stats"
	"github.com/wesleyorama2/restclient/pkg/jsonpath"
	"github.com/wesleyorama2/restclient/pkg/jsonschema"
)

// errRequestFailed is returned after the failure has already been printed
var errRequestFailed = errors.New("request failed")

// requestOptions holds the flags shared by every verb command
type requestOptions struct {
	headers     []string
	params      []string
	data        string
	baseURL     string
	format      string
	formatRegex string
	user        string
	indexed     bool
	userAgent   string
	timeout     time.Duration
	timeoutSet  bool
	noFollow    bool
	insecure    bool
	profile     string
	output      string
	extract     []string
	schema      string
	repeat      int
	concurrency int
	rate        float64
	fail        bool
	metricsFile string
	verbose     bool
	noColor     bool
}

func (o *requestOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVarP(&o.headers, "header", "H", nil, "HTTP header 'Name: value' (can be used multiple times)")
	f.StringArrayVarP(&o.params, "param", "p", nil, "Parameter key=value; repeating a key sends a list (can be used multiple times)")
	f.StringVarP(&o.data, "data", "d", "", "Raw payload, sent as-is instead of encoded parameters")
	f.StringVar(&o.baseURL, "base-url", "", "Base URL the request URL is joined to")
	f.StringVar(&o.format, "format", "", "Fixed response format; also appended to the URL as an extension")
	f.StringVar(&o.formatRegex, "format-regex", "", "Pattern applied to Content-Type; its second group names the format")
	f.StringVarP(&o.user, "user", "u", "", "Basic auth credentials as user:pass")
	f.BoolVar(&o.indexed, "indexed-queries", false, "Keep list indexes in encoded parameters (a[0]=x instead of a[]=x)")
	f.StringVar(&o.userAgent, "user-agent", "", "User-Agent header value")
	f.DurationVarP(&o.timeout, "timeout", "t", 30*time.Second, "Request timeout")
	f.BoolVar(&o.noFollow, "no-follow", false, "Do not follow redirects")
	f.BoolVar(&o.insecure, "insecure", false, "Skip TLS certificate verification")
	f.StringVar(&o.profile, "profile", "", "Profile file (YAML or JSON) with client defaults")
	f.StringVarP(&o.output, "output", "o", "text", "Output format: text, json or yaml")
	f.StringArrayVar(&o.extract, "extract", nil, "Extract a value from the decoded body as name=$.path (can be used multiple times)")
	f.StringVar(&o.schema, "schema", "", "JSON Schema file the decoded body must satisfy")
	f.IntVar(&o.repeat, "repeat", 1, "Execute the request N times and print a latency summary")
	f.IntVar(&o.concurrency, "concurrency", 1, "Parallel executions when repeating")
	f.Float64Var(&o.rate, "rate", 0, "Maximum executions per second when repeating (0 means unpaced)")
	f.BoolVar(&o.fail, "fail", false, "Treat HTTP 4xx and 5xx responses as failures")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Enable verbose output")
	f.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
}

// clientOptions assembles client options: the default timeout first, then
// the profile, then explicitly given flags
func (o *requestOptions) clientOptions() ([]http.Option, error) {
	var opts []http.Option
	if !o.timeoutSet {
		opts = append(opts, http.WithTimeout(o.timeout))
	}

	if o.profile != "" {
		profile, err := config.LoadProfile(o.profile, config.EnvironmentVariables())
		if err != nil {
			return nil, err
		}
		profileOpts, err := profile.Options()
		if err != nil {
			return nil, err
		}
		opts = append(opts, profileOpts...)
	}

	if o.baseURL != "" {
		opts = append(opts, http.WithBaseURL(o.baseURL))
	}
	if o.format != "" {
		opts = append(opts, http.WithFormat(o.format))
	}
	if o.formatRegex != "" {
		re, err := regexp.Compile(o.formatRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid --format-regex: %w", err)
		}
		if re.NumSubexp() < 2 {
			return nil, fmt.Errorf("invalid --format-regex: the pattern needs two capture groups")
		}
		opts = append(opts, http.WithFormatRegex(re))
	}
	if o.user != "" {
		user, pass, ok := strings.Cut(o.user, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --user %q: expected user:pass", o.user)
		}
		opts = append(opts, http.WithBasicAuth(user, pass))
	}
	if o.indexed {
		opts = append(opts, http.WithIndexedQueries(true))
	}
	if o.userAgent != "" {
		opts = append(opts, http.WithUserAgent(o.userAgent))
	}
	if o.timeoutSet {
		opts = append(opts, http.WithTimeout(o.timeout))
	}
	if o.noFollow {
		opts = append(opts, http.WithOverride(http.OverrideFollowRedirects(false)))
	}
	if o.insecure {
		opts = append(opts, http.WithOverride(http.OverrideInsecureSkipVerify(true)))
	}

	return opts, nil
}

// requestParams returns the per-call payload: the raw --data string or the
// --param pairs as a mapping
func (o *requestOptions) requestParams() (any, error) {
	if o.data != "" {
		if len(o.params) > 0 {
			return nil, fmt.Errorf("--data and --param cannot be combined")
		}
		return o.data, nil
	}
	if len(o.params) == 0 {
		return nil, nil
	}

	params := http.Params{}
	for _, pair := range o.params {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		switch existing := params[key].(type) {
		case nil:
			params[key] = value
		case []any:
			params[key] = append(existing, value)
		default:
			params[key] = []any{existing, value}
		}
	}
	return params, nil
}

func (o *requestOptions) requestHeaders() (http.Header, error) {
	if len(o.headers) == 0 {
		return nil, nil
	}
	headers := http.Header{}
	for _, line := range o.headers {
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --header %q: expected 'Name: value'", line)
		}
		headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return headers, nil
}

// checks bundles the post-response work: extraction and validation
type checks struct {
	exprs     []jsonpath.Expression
	validator *jsonschema.Validator
	fail      bool
}

// result is the outcome of one execution
type result struct {
	resp       *http.Client
	extracted  map[string]any
	extractErr error
	schemaErr  error
	failed     bool
}

func (c *checks) apply(resp *http.Client) result {
	r := result{resp: resp}
	if resp.TransportError() != "" {
		r.failed = true
		return r
	}
	if c.fail {
		if env := resp.Response(); env.IsClientError() || env.IsServerError() {
			r.failed = true
		}
	}
	if len(c.exprs) == 0 && c.validator == nil {
		return r
	}

	decoded, err := resp.Decoded()
	if err != nil {
		if c.applyRaw(&r, resp.Body()) {
			return r
		}
		r.extractErr = err
		r.schemaErr = err
		r.failed = true
		return r
	}
	if len(c.exprs) > 0 {
		r.extracted, r.extractErr = jsonpath.SelectMultiple(decoded, c.exprs)
		if r.extractErr != nil {
			r.failed = true
		}
	}
	if c.validator != nil {
		r.schemaErr = c.validator.ValidateValue(decoded)
		if r.schemaErr != nil {
			r.failed = true
		}
	}
	return r
}

// applyRaw runs the checks against the raw body when it could not be
// decoded but still holds a JSON document, as with JSON served under a
// text/plain content type. It reports whether it handled the body.
func (c *checks) applyRaw(r *result, body []byte) bool {
	if !jsonpath.Valid(body) {
		return false
	}
	if len(c.exprs) > 0 {
		r.extracted, r.extractErr = jsonpath.ExtractMultiple(body, c.exprs)
		if r.extractErr != nil {
			r.failed = true
		}
	}
	if c.validator != nil {
		r.schemaErr = c.validator.ValidateBytes(body)
		if r.schemaErr != nil {
			r.failed = true
		}
	}
	return true
}

func runRequest(cmd *cobra.Command, method, target string, o *requestOptions) error {
	logger := newLogger(cmd)

	format, err := output.ParseOutputFormat(o.output)
	if err != nil {
		return err
	}
	if o.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}
	if o.rate < 0 {
		return fmt.Errorf("--rate cannot be negative")
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}

	o.timeoutSet = cmd.Flags().Changed("timeout")
	clientOpts, err := o.clientOptions()
	if err != nil {
		return err
	}
	params, err := o.requestParams()
	if err != nil {
		return err
	}
	headers, err := o.requestHeaders()
	if err != nil {
		return err
	}

	c := &checks{fail: o.fail}
	if c.exprs, err = jsonpath.ParseExpressions(o.extract); err != nil {
		return err
	}
	if o.schema != "" {
		if c.validator, err = jsonschema.CompileFile(o.schema); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	clientOpts = append(clientOpts,
		http.WithLogger(logger),
		http.WithMetrics(http.NewMetricsCollectorWithRegistry(registry)),
	)
	client := http.NewClient(clientOpts...)

	// without a configured base URL the target carries its own
	path := target
	if client.Config().BaseURL == "" {
		var base string
		base, path = parseURL(target)
		if path == "" {
			// a bare host is requested as given
			path = base
		} else {
			client = client.With(http.WithBaseURL(base))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	noColor := true
	if f, ok := out.(*os.File); ok {
		noColor = output.ColorDisabled(f, o.noColor)
	}
	formatter := output.GetFormatter(format, o.verbose, noColor)

	logger.WithFields(logrus.Fields{
		"method": method,
		"target": target,
		"repeat": o.repeat,
	}).Debug("starting")

	var failed bool
	if o.repeat == 1 {
		r := c.apply(client.Execute(ctx, path, method, params, headers))
		if r.extractErr != nil {
			logger.WithError(r.extractErr).Warn("extraction failed")
		}
		printResult(out, formatter, c, r)
		failed = r.failed
	} else {
		failed = runRepeated(ctx, out, formatter, client, c, o, method, path, params, headers)
	}

	if o.metricsFile != "" {
		if err := prometheus.WriteToTextfile(o.metricsFile, registry); err != nil {
			logger.WithError(err).Warn("failed to write metrics file")
		}
	}

	if failed {
		return errRequestFailed
	}
	return nil
}

func printResult(out io.Writer, formatter output.FormatProvider, c *checks, r result) {
	if req := r.resp.Request(); req != nil {
		fmt.Fprint(out, formatter.FormatRequest(req))
	}
	fmt.Fprint(out, formatter.FormatResponse(r.resp))
	if r.resp.TransportError() != "" {
		return
	}
	if len(c.exprs) > 0 {
		fmt.Fprint(out, formatter.FormatExtractions(c.exprs, r.extracted))
	}
	if c.validator != nil {
		fmt.Fprint(out, formatter.FormatValidation(r.schemaErr))
	}
}

// runRepeated executes the request o.repeat times over o.concurrency
// workers, paced to o.rate per second when set, prints the first result in
// full and then the latency summary.
func runRepeated(ctx context.Context, out io.Writer, formatter output.FormatProvider, client *http.Client,
	c *checks, o *requestOptions, method, path string, params any, headers http.Header) bool {
	recorder := stats.NewRecorder()
	limiter := rate.NewLimiter(o.rate)

	jobs := make(chan int)
	results := make([]result, o.repeat)

	var wg sync.WaitGroup
	for w := 0; w < o.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				start := time.Now()
				resp := client.Execute(ctx, path, method, params, headers)
				r := c.apply(resp)
				duration := resp.Info().Timing.TotalTime
				if duration == 0 {
					duration = time.Since(start)
				}
				recorder.Record(stats.Sample{
					Duration:   duration,
					StatusCode: resp.Info().StatusCode,
					Bytes:      int64(len(resp.Body())),
					Failed:     r.failed,
				})
				results[i] = r
			}
		}()
	}

	sent := 0
loop:
	for i := 0; i < o.repeat; i++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case jobs <- i:
			sent++
		}
	}
	close(jobs)
	wg.Wait()

	failed := sent < o.repeat
	for _, r := range results[:sent] {
		if r.failed {
			failed = true
		}
	}

	if sent > 0 {
		printResult(out, formatter, c, results[0])
	}
	fmt.Fprint(out, formatter.FormatSummary(recorder.Summary()))
	return failed
}
