package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
	"github.com/stretchr/testify/require"
	gmaps "googlemaps.github.io/maps"
)

type stubDirections struct {
	routes  []gmaps.Route
	err     error
	request *gmaps.DirectionsRequest
}

func (s *stubDirections) Directions(_ context.Context, r *gmaps.DirectionsRequest) ([]gmaps.Route, []gmaps.GeocodedWaypoint, error) {
	s.request = r
	return s.routes, nil, s.err
}

func TestDrivingDistanceKmSumsLegs(t *testing.T) {
	stub := &stubDirections{routes: []gmaps.Route{{Legs: []*gmaps.Leg{
		{Distance: gmaps.Distance{Meters: 60250}},
		{Distance: gmaps.Distance{Meters: 39500}},
	}}}}
	client := &Client{api: stub, region: "et", timeout: defaultTimeout}

	km, err := client.DrivingDistanceKm(context.Background(), "Addis Ababa", "Adama")
	require.NoError(t, err)
	require.Equal(t, "99.75", km.String())
	require.Equal(t, gmaps.TravelModeDriving, stub.request.Mode)
	require.Equal(t, "et", stub.request.Region)
}

func TestDrivingDistanceKmErrors(t *testing.T) {
	client := &Client{api: &stubDirections{}, timeout: defaultTimeout}
	_, err := client.DrivingDistanceKm(context.Background(), "", "Adama")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = client.DrivingDistanceKm(context.Background(), "Addis Ababa", "Adama")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	failing := &Client{api: &stubDirections{err: errors.New("quota")}, timeout: defaultTimeout}
	_, err = failing.DrivingDistanceKm(context.Background(), "Addis Ababa", "Adama")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	var nilClient *Client
	_, err = nilClient.DrivingDistanceKm(context.Background(), "a", "b")
	require.Error(t, err)
}

func TestNewClientCallsDirectionsEndpoint(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","routes":[{"summary":"A1","legs":[{"distance":{"text":"99 km","value":99000},"duration":{"text":"2 hours","value":7200}}]}]}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	km, err := client.DrivingDistanceKm(context.Background(), "Addis Ababa", "Adama")
	require.NoError(t, err)
	require.Equal(t, "99", km.String())
	require.Equal(t, "/maps/api/directions/json", gotPath)
	require.Equal(t, "test-key", gotKey)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("  ")
	require.ErrorIs(t, err, errAPIKeyRequired)
}
