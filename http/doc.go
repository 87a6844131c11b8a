// Package http is the importable API of the REST client. It re-exports the
// client, its options and the decoder registry so programs outside this
// module can use them.
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithTimeout(10*time.Second),
//	    http.WithHeader("Accept", "application/json"),
//	)
//
//	resp := client.Get(ctx, "/users/1", nil, nil)
//	if msg := resp.TransportError(); msg != "" {
//	    log.Fatal(msg)
//	}
//
//	for key, value := range must(resp.All()) {
//	    fmt.Println(key, value)
//	}
//
// Profile Example:
//
//	opts, err := http.ProfileOptions("profiles/staging.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := http.NewClient(opts...)
//
// See the internal/http package documentation for the request and
// response semantics.
package http
