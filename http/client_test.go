package http_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/restclient/http"
)

func TestClient_PublicAPI(t *testing.T) {
	var seen *http.RequestDescriptor
	transport := http.TransportFunc(func(ctx context.Context, req *http.RequestDescriptor) ([]byte, http.TransportInfo, error) {
		seen = req
		raw := "HTTP/1.1 200 OK\r\nContent-Type: text/csv\r\n\r\nid,name"
		return []byte(raw), http.TransportInfo{StatusCode: 200}, nil
	})

	client := http.NewClient(
		http.WithBaseURL("https://api.example.com"),
		http.WithTransport(transport),
		http.WithDecoder("csv", http.DecoderFunc(func(raw string) (any, error) {
			return map[string]any{"raw": raw}, nil
		})),
	)

	resp := client.Get(context.Background(), "/export", http.Params{"page": 1}, nil)
	require.Empty(t, resp.TransportError())
	assert.Equal(t, "https://api.example.com/export?page=1", seen.URL)

	raw, err := resp.Lookup("raw")
	require.NoError(t, err)
	assert.Equal(t, "id,name", raw)

	assert.True(t, errors.Is(resp.Set("raw", "x"), http.ErrImmutableResponse))

	_, err = client.Lookup("raw")
	assert.ErrorIs(t, err, http.ErrNoBody)
}

func TestProfileOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"baseUrl": "https://api.example.com", "format": "json"}`), 0o644))

	opts, err := http.ProfileOptions(path)
	require.NoError(t, err)

	cfg := http.NewClient(opts...).Config()
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "json", cfg.Format)

	_, err = http.ProfileOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
