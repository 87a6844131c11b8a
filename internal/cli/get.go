package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return newRequestCmd("GET", "Make a GET request; parameters are sent in the query string")
}

func newHeadCmd() *cobra.Command {
	return newRequestCmd("HEAD", "Make a HEAD request")
}

// newRequestCmd builds the command for one HTTP verb
func newRequestCmd(method, short string) *cobra.Command {
	opts := &requestOptions{}
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " URL",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, method, args[0], opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// parseURL splits a URL into base URL and path. The path is empty when the
// URL has none.
func parseURL(fullURL string) (string, string) {
	// Add scheme if missing
	if !strings.HasPrefix(fullURL, "http://") && !strings.HasPrefix(fullURL, "https://") {
		fullURL = "http://" + fullURL
	}

	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return fullURL, "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	if parsedURL.User != nil {
		baseURL = fmt.Sprintf("%s://%s@%s", parsedURL.Scheme, parsedURL.User.String(), parsedURL.Host)
	}

	path := parsedURL.EscapedPath()
	if parsedURL.RawQuery != "" {
		path = path + "?" + parsedURL.RawQuery
	}
	if parsedURL.Fragment != "" {
		path = path + "#" + parsedURL.Fragment
	}

	return baseURL, path
}
