package http

import (
	"github.com/wesleyorama2/restclient/internal/config"
	"github.com/wesleyorama2/restclient/internal/http"
)

type (
	// Client executes requests and holds the response of the last one.
	// A Client is never modified by a request; each call returns a new one.
	Client = http.Client

	// Option configures a Client.
	Option = http.Option

	// Config is the resolved client configuration.
	Config = http.Config

	Header   = http.Header
	Params   = http.Params
	Override = http.Override

	// Decoder turns a raw body into a value.
	Decoder     = http.Decoder
	DecoderFunc = http.DecoderFunc
	Registry    = http.Registry

	RequestDescriptor = http.RequestDescriptor
	Envelope          = http.Envelope
	ResponseHeader    = http.ResponseHeader
	TransportInfo     = http.TransportInfo
	TimingInfo        = http.TimingInfo
	Iterator          = http.Iterator

	// Transport performs a built request and returns the raw response.
	Transport     = http.Transport
	TransportFunc = http.TransportFunc

	MetricsCollector = http.MetricsCollector

	UnsupportedFormatError = http.UnsupportedFormatError
	DecodeError            = http.DecodeError
)

const (
	DefaultTimeout   = http.DefaultTimeout
	DefaultUserAgent = http.DefaultUserAgent
)

var (
	ErrNoBody             = http.ErrNoBody
	ErrUndeterminedFormat = http.ErrUndeterminedFormat
	ErrUnsupportedFormat  = http.ErrUnsupportedFormat
	ErrImmutableResponse  = http.ErrImmutableResponse
)

var (
	NewClient     = http.NewClient
	NewFromConfig = http.NewFromConfig
	DefaultConfig = http.DefaultConfig
	NewRegistry   = http.NewRegistry

	NewHTTPTransport                = http.NewHTTPTransport
	NewMetricsCollector             = http.NewMetricsCollector
	NewMetricsCollectorWithRegistry = http.NewMetricsCollectorWithRegistry

	WithBaseURL        = http.WithBaseURL
	WithHeader         = http.WithHeader
	WithHeaders        = http.WithHeaders
	WithParameter      = http.WithParameter
	WithParameters     = http.WithParameters
	WithFormat         = http.WithFormat
	WithFormatRegex    = http.WithFormatRegex
	WithDecoder        = http.WithDecoder
	WithRegistry       = http.WithRegistry
	WithBasicAuth      = http.WithBasicAuth
	WithOverride       = http.WithOverride
	WithTimeout        = http.WithTimeout
	WithIndexedQueries = http.WithIndexedQueries
	WithUserAgent      = http.WithUserAgent
	WithTransport      = http.WithTransport
	WithLogger         = http.WithLogger
	WithMetrics        = http.WithMetrics

	OverrideTimeout            = http.OverrideTimeout
	OverrideFollowRedirects    = http.OverrideFollowRedirects
	OverrideInsecureSkipVerify = http.OverrideInsecureSkipVerify
)

// ProfileOptions loads a profile file (YAML or JSON) and returns the client
// options it describes. {{NAME}} placeholders are resolved from the
// profile's variables and then from the process environment.
func ProfileOptions(path string) ([]Option, error) {
	profile, err := config.LoadProfile(path, config.EnvironmentVariables())
	if err != nil {
		return nil, err
	}
	return profile.Options()
}
