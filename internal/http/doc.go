// Package http builds requests from layered configuration, executes them
// through a Transport and exposes the decoded response body as a
// read-only, navigable value.
//
// This package provides:
//   - A client configured with functional options, never mutated by a call
//   - A request builder merging default and per-call headers and parameters
//   - A raw response parser (status lines, normalized headers, body)
//   - Format resolution from configuration or Content-Type
//   - A decoder registry and lazy, run-once decoding
//   - Ordered iteration and keyed lookup over the decoded body
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithHeader("Accept", "application/json"),
//	    http.WithParameter("api_key", "xxx"),
//	)
//
//	resp := client.Get(ctx, "/users", http.Params{"tags": []string{"a", "b"}}, nil)
//	if msg := resp.TransportError(); msg != "" {
//	    log.Fatal(msg)
//	}
//
//	name, err := resp.Lookup("name")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Custom Formats:
//
//	client.RegisterDecoder("csv", http.DecoderFunc(func(raw string) (any, error) {
//	    return parseCSV(raw)
//	}))
//
// The format of a response is the configured one (WithFormat) or the
// subtype of its Content-Type header. Decoding errors are reported by the
// first call that reads the body, not by the request methods.
package http
