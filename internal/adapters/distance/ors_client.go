package distance

import (
	"errors"
	"moving-quote-service/internal/ports"
	"net/http"
	"strings"
	"time"
)

const DefaultORSBaseURL = "https://api.openrouteservice.org"

// ORSClient implements Geocoder and DistanceProvider using OpenRouteService.
//
// It coordinates:
//   - Structured address geocoding (/geocode/search/structured)
//   - Single-pair matrix lookups (/v2/matrix/{profile})
//   - Retry with exponential backoff for transient failures
//
// It does no caching; DistanceResolver owns the caches. The client is safe for concurrent use.
type ORSClient struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	country string
	backoff time.Duration
}

type ORSOption func(*ORSClient)

func WithBaseURL(u string) ORSOption {
	return func(o *ORSClient) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithCountry restricts geocoding to an ISO 3166 country code.
func WithCountry(code string) ORSOption {
	return func(o *ORSClient) { o.country = code }
}

func WithHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSClient) { o.session = c }
}

// WithInitialBackoff sets the delay before the first retry.
func WithInitialBackoff(d time.Duration) ORSOption {
	return func(o *ORSClient) { o.backoff = d }
}

func NewORSClient(apiKey string, opts ...ORSOption) (*ORSClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	client := &ORSClient{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: DefaultORSBaseURL,
		profile: "driving-car",
		country: "CL",
		backoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

var (
	_ ports.Geocoder         = (*ORSClient)(nil)
	_ ports.DistanceProvider = (*ORSClient)(nil)
)
