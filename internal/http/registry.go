package http

import (
	"sort"
	"sync"

	"github.com/wesleyorama2/restclient/pkg/decode"
)

// Decoder converts a raw response body into a structured value.
type Decoder interface {
	Decode(raw string) (any, error)
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(raw string) (any, error)

// Decode calls f(raw).
func (f DecoderFunc) Decode(raw string) (any, error) {
	return f(raw)
}

// Registry maps format identifiers to decoders. It is safe for concurrent
// use and is shared by reference between a client and the instances it
// produces, so registrations made after construction are seen at decode time.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry returns a registry holding the stock decoders: json, php,
// yaml and yml.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	r.Register("json", DecoderFunc(decode.JSON))
	r.Register("php", DecoderFunc(decode.PHP))
	r.Register("yaml", DecoderFunc(decode.YAML))
	r.Register("yml", DecoderFunc(decode.YAML))
	return r
}

// Register binds format to d, replacing any earlier binding.
func (r *Registry) Register(format string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[format] = d
}

// Lookup returns the decoder bound to format.
func (r *Registry) Lookup(format string) (Decoder, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decoders[format]
	return d, ok
}

// Formats lists the registered identifiers in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.decoders))
	for f := range r.decoders {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &Registry{decoders: make(map[string]Decoder, len(r.decoders))}
	for f, d := range r.decoders {
		c.decoders[f] = d
	}
	return c
}
