package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
)

type corridorBody struct {
	Origin     string  `json:"originRegion" validate:"required,region"`
	Direction  string  `json:"direction" validate:"omitempty,corridor_direction"`
	DistanceKm float64 `json:"distanceKm" validate:"gt=0"`
}

func TestDecodeJSONBodyValidatesFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"originRegion":"Atlantis","direction":"SIDEWAYS","distanceKm":0}`))
	var body corridorBody
	err := DecodeJSONBody(req, &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	details := pkgerrors.As(err).Details().(map[string]string)
	require.Equal(t, "must be a known region", details["originRegion"])
	require.Equal(t, "must be ONE_WAY, ROUND_TRIP or BIDIRECTIONAL", details["direction"])
	require.Equal(t, "must be greater than 0", details["distanceKm"])
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"originRegion":"Addis Ababa","distanceKm":120.5}`))
	var body corridorBody
	require.NoError(t, DecodeJSONBody(req, &body))
	require.Equal(t, 120.5, body.DistanceKm)
}

func TestDecodeJSONBodyRejectsUnknownFieldsAndEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"originRegion":"Afar","distanceKm":1,"extra":true}`))
	var body corridorBody
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestDecodeOptionalJSONBody(t *testing.T) {
	var body struct {
		Reason string `json:"reason" validate:"max=10"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.NoError(t, DecodeOptionalJSONBody(req, &body))
	require.Empty(t, body.Reason)
}

func TestQueryHelpers(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/?carrierId="+id.String()+"&limit=500&active=maybe", nil)

	got, err := ParseQueryUUID(req, "carrierId")
	require.NoError(t, err)
	require.Equal(t, id, got)

	missing, err := ParseQueryUUID(req, "other")
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, missing)

	_, err = ParseQueryInt(req, "limit", 25, 1, 100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParseQueryBool(req, "active")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestURLParamUUID(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("loadId", id.String())
	rc.URLParams.Add("bad", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	got, err := URLParamUUID(req, "loadId")
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = URLParamUUID(req, "bad")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = URLParamUUID(req, "missing")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
