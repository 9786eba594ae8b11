package maps

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/shopspring/decimal"
	gmaps "googlemaps.github.io/maps"
)

const (
	defaultRegion  = "et"
	defaultTimeout = 5 * time.Second
)

var errAPIKeyRequired = errors.New("google maps api key is required")

// RouteEstimator returns the driving distance between two places in km.
type RouteEstimator interface {
	DrivingDistanceKm(ctx context.Context, origin, destination string) (decimal.Decimal, error)
}

type directionsAPI interface {
	Directions(ctx context.Context, r *gmaps.DirectionsRequest) ([]gmaps.Route, []gmaps.GeocodedWaypoint, error)
}

// Client wraps the Google Maps Directions API used to estimate trip distance.
type Client struct {
	api     directionsAPI
	region  string
	timeout time.Duration

	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the client at a different Maps host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRegion biases results to a ccTLD region code.
func WithRegion(region string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(region); trimmed != "" {
			c.region = trimmed
		}
	}
}

// WithTimeout bounds each directions lookup.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient builds the Google Maps client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		region:     defaultRegion,
		timeout:    defaultTimeout,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	clientOpts := []gmaps.ClientOption{
		gmaps.WithAPIKey(trimmedKey),
		gmaps.WithHTTPClient(client.httpClient),
	}
	if client.baseURL != "" {
		clientOpts = append(clientOpts, gmaps.WithBaseURL(client.baseURL))
	}
	api, err := gmaps.NewClient(clientOpts...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create google maps client")
	}
	client.api = api
	return client, nil
}

// DrivingDistanceKm returns the first route's driving distance rounded to 3 places.
func (c *Client) DrivingDistanceKm(ctx context.Context, origin, destination string) (decimal.Decimal, error) {
	if c == nil || c.api == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "origin and destination are required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	routes, _, err := c.api.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        gmaps.TravelModeDriving,
		Region:      c.region,
	})
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "directions request failed")
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "no route found")
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		if leg != nil {
			meters += leg.Distance.Meters
		}
	}
	if meters <= 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "route has no distance")
	}
	return decimal.NewFromInt(int64(meters)).Div(decimal.NewFromInt(1000)).Round(3), nil
}
