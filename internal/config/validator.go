package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidationError represents a profile validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is returned by ParseProfile when validation fails
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return "invalid profile: " + strings.Join(msgs, "; ")
}

var formatToken = regexp.MustCompile(`^\w+$`)

// ValidateProfile validates a profile
func ValidateProfile(p *Profile) []ValidationError {
	var errors []ValidationError

	if p.BaseURL != "" && !strings.Contains(p.BaseURL, "{{") {
		u, err := url.Parse(p.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, ValidationError{
				Path:    "baseUrl",
				Message: fmt.Sprintf("must be an absolute http(s) URL: %s", p.BaseURL),
			})
		}
	}

	for _, name := range sortedHeaderNames(p.Headers) {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, ":\r\n") {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("headers.%s", name),
				Message: "invalid header name",
			})
			continue
		}
		for i, v := range p.Headers[name] {
			if strings.ContainsAny(v, "\r\n") {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("headers.%s[%d]", name, i),
					Message: "header value cannot contain line breaks",
				})
			}
		}
	}

	if p.Format != "" && !formatToken.MatchString(p.Format) {
		errors = append(errors, ValidationError{
			Path:    "format",
			Message: fmt.Sprintf("invalid format: %s", p.Format),
		})
	}

	if p.FormatRegex != "" {
		re, err := regexp.Compile(p.FormatRegex)
		switch {
		case err != nil:
			errors = append(errors, ValidationError{
				Path:    "formatRegex",
				Message: err.Error(),
			})
		case re.NumSubexp() < 2:
			errors = append(errors, ValidationError{
				Path:    "formatRegex",
				Message: "pattern must have at least two capture groups; the second one names the format",
			})
		}
	}

	if p.Password != "" && p.Username == "" {
		errors = append(errors, ValidationError{
			Path:    "username",
			Message: "username is required when password is set",
		})
	}

	if p.Timeout != "" {
		if d, err := ParseDurationString(p.Timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    "timeout",
				Message: err.Error(),
			})
		} else if d <= 0 {
			errors = append(errors, ValidationError{
				Path:    "timeout",
				Message: "timeout must be positive",
			})
		}
	}

	return errors
}
