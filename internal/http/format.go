package http

import (
	"github.com/wesleyorama2/restclient/pkg/decode"
)

// ResolveFormat picks the format identifier for env's body: the configured
// Format wins, otherwise the subtype FormatRegex extracts from the
// content_type header.
func ResolveFormat(cfg Config, env *Envelope) (string, error) {
	if env == nil || len(env.Body) == 0 {
		return "", ErrNoBody
	}
	if cfg.Format != "" {
		return cfg.Format, nil
	}

	re := cfg.FormatRegex
	if re == nil {
		re = DefaultFormatRegex
	}
	if ct := env.Headers.Get("content_type"); ct != "" {
		if m := re.FindStringSubmatch(ct); len(m) > 2 && m[2] != "" {
			return m[2], nil
		}
	}
	return "", ErrUndeterminedFormat
}

// Decode runs the decoder registered for format over raw and normalizes its
// result into the read-only value model.
func Decode(reg *Registry, format, raw string) (any, error) {
	d, ok := reg.Lookup(format)
	if !ok {
		return nil, &UnsupportedFormatError{Format: format}
	}
	v, err := d.Decode(raw)
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	return decode.Normalize(v), nil
}
