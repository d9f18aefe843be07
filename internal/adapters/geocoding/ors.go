package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"freight-service/internal/domain"
	"freight-service/internal/platform/obs"
	"freight-service/internal/ports"
	"net/http"
	"net/url"
	"strings"
)

// ORSGeocoder implements Geocoder using OpenRouteService (/geocode/search).
type ORSGeocoder struct {
	httpClient
	baseURL string
	country string
}

var _ ports.Geocoder = (*ORSGeocoder)(nil)

func NewORSGeocoder(session *http.Client, baseURL, apiKey string) (*ORSGeocoder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	h := http.Header{}
	h.Set("Authorization", apiKey)
	return &ORSGeocoder{
		httpClient: newHTTPClient(session, h),
		baseURL:    strings.TrimRight(baseURL, "/"),
		country:    "BR",
	}, nil
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// normalize ensures consistent queries by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	q := url.Values{}
	q.Set("text", normalize(address))
	q.Set("boundary.country", o.country)
	q.Set("size", "1")
	endpoint := o.baseURL + "/geocode/search?" + q.Encode()

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, ports.ErrNoGeocodeResult)
	}

	// ORS uses GeoJSON order: [lon, lat].
	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	return domain.Coordinates{Lat: coords[1], Lng: coords[0]}, nil
}
