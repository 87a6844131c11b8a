package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/restclient/internal/http"
)

// Profile is a named set of client defaults stored on disk
type Profile struct {
	BaseURL             string                  `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Headers             map[string]HeaderValues `json:"headers,omitempty" yaml:"headers,omitempty"`
	Parameters          map[string]any          `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Format              string                  `json:"format,omitempty" yaml:"format,omitempty"`
	FormatRegex         string                  `json:"formatRegex,omitempty" yaml:"formatRegex,omitempty"`
	Username            string                  `json:"username,omitempty" yaml:"username,omitempty"`
	Password            string                  `json:"password,omitempty" yaml:"password,omitempty"`
	UserAgent           string                  `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	BuildIndexedQueries bool                    `json:"buildIndexedQueries,omitempty" yaml:"buildIndexedQueries,omitempty"`
	Timeout             string                  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	FollowRedirects     *bool                   `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	InsecureSkipVerify  bool                    `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
	Variables           map[string]string       `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// HeaderValues holds one or more header values. In a profile file it may be
// written as a single string or as a list.
type HeaderValues []string

// UnmarshalJSON accepts "value" or ["a", "b"]
func (h *HeaderValues) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*h = HeaderValues{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("header value must be a string or a list of strings")
	}
	*h = list
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence
func (h *HeaderValues) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*h = HeaderValues{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*h = list
		return nil
	}
	return fmt.Errorf("line %d: header value must be a string or a list of strings", node.Line)
}

// LoadProfile reads, substitutes and validates a profile file.
//
// The format is determined by extension:
//   - .json -> JSON
//   - .yaml, .yml or anything else -> YAML
//
// {{NAME}} placeholders are resolved from the profile's own variables,
// overridden by vars.
func LoadProfile(path string, vars map[string]string) (*Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("profile not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading profile: %w", err)
	}

	return ParseProfile(data, path, vars)
}

// ParseProfile parses profile data; path is only used to pick the format.
func ParseProfile(data []byte, path string, vars map[string]string) (*Profile, error) {
	var profile Profile

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("failed to parse JSON profile: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("failed to parse YAML profile: %w", err)
		}
	}

	profile.Substitute(MergeEnvironments(profile.Variables, vars))

	if errs := ValidateProfile(&profile); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &profile, nil
}

// Substitute resolves {{NAME}} placeholders in every string field.
// Unknown placeholders are left as-is.
func (p *Profile) Substitute(env map[string]string) {
	if len(env) == 0 {
		return
	}
	p.BaseURL = ProcessEnvironment(p.BaseURL, env)
	p.Format = ProcessEnvironment(p.Format, env)
	p.Username = ProcessEnvironment(p.Username, env)
	p.Password = ProcessEnvironment(p.Password, env)
	p.UserAgent = ProcessEnvironment(p.UserAgent, env)
	p.Timeout = ProcessEnvironment(p.Timeout, env)
	for name, values := range p.Headers {
		resolved := make(HeaderValues, len(values))
		for i, v := range values {
			resolved[i] = ProcessEnvironment(v, env)
		}
		p.Headers[name] = resolved
	}
	for name, v := range p.Parameters {
		p.Parameters[name] = substituteValue(v, env)
	}
}

func substituteValue(v any, env map[string]string) any {
	switch t := v.(type) {
	case string:
		return ProcessEnvironment(t, env)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = substituteValue(item, env)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = substituteValue(item, env)
		}
		return out
	}
	return v
}

// Options converts the profile into client options. The profile must have
// passed ValidateProfile.
func (p *Profile) Options() ([]http.Option, error) {
	var opts []http.Option

	if p.BaseURL != "" {
		opts = append(opts, http.WithBaseURL(p.BaseURL))
	}
	if len(p.Headers) > 0 {
		headers := http.Header{}
		for _, name := range sortedHeaderNames(p.Headers) {
			headers.Set(name, p.Headers[name]...)
		}
		opts = append(opts, http.WithHeaders(headers))
	}
	if len(p.Parameters) > 0 {
		opts = append(opts, http.WithParameters(http.Params(p.Parameters)))
	}
	if p.Format != "" {
		opts = append(opts, http.WithFormat(p.Format))
	}
	if p.FormatRegex != "" {
		re, err := regexp.Compile(p.FormatRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid formatRegex: %w", err)
		}
		opts = append(opts, http.WithFormatRegex(re))
	}
	if p.Username != "" || p.Password != "" {
		opts = append(opts, http.WithBasicAuth(p.Username, p.Password))
	}
	if p.UserAgent != "" {
		opts = append(opts, http.WithUserAgent(p.UserAgent))
	}
	if p.BuildIndexedQueries {
		opts = append(opts, http.WithIndexedQueries(true))
	}
	if p.Timeout != "" {
		d, err := ParseDurationString(p.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		opts = append(opts, http.WithTimeout(d))
	}
	if p.FollowRedirects != nil {
		opts = append(opts, http.WithOverride(http.OverrideFollowRedirects(*p.FollowRedirects)))
	}
	if p.InsecureSkipVerify {
		opts = append(opts, http.WithOverride(http.OverrideInsecureSkipVerify(true)))
	}

	return opts, nil
}

func sortedHeaderNames(h map[string]HeaderValues) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseDurationString parses a duration string.
//
// Supported formats:
//   - Standard Go duration: "30s", "2m", "1h30m", "500ms"
//   - Seconds as integer: "30" (treated as 30 seconds)
func ParseDurationString(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	var seconds int
	if _, err := fmt.Sscanf(s, "%d", &seconds); err == nil && fmt.Sprint(seconds) == s {
		return time.Duration(seconds) * time.Second, nil
	}

	return 0, fmt.Errorf("invalid duration format: %s", s)
}

// ProcessEnvironment replaces {{NAME}} placeholders in input
func ProcessEnvironment(input string, env map[string]string) string {
	if !strings.Contains(input, "{{") {
		return input
	}
	result := input
	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// MergeEnvironments merges two environments, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}

// EnvironmentVariables returns the process environment as a map.
func EnvironmentVariables() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
