package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"freight-service/internal/domain"
	"freight-service/internal/platform/obs"
	"freight-service/internal/ports"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// NominatimGeocoder implements Geocoder using the OpenStreetMap Nominatim
// search API. Nominatim's usage policy requires an identifying User-Agent.
type NominatimGeocoder struct {
	httpClient
	baseURL string
}

var _ ports.Geocoder = (*NominatimGeocoder)(nil)

func NewNominatimGeocoder(session *http.Client, baseURL, userAgent string) *NominatimGeocoder {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	return &NominatimGeocoder{
		httpClient: newHTTPClient(session, h),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Nominatim returns coordinates as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", address)
	q.Set("limit", "1")
	endpoint := g.baseURL + "/search?" + q.Encode()

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		return g.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode nominatim response: %w", err)
	}

	if len(places) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, ports.ErrNoGeocodeResult)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse latitude %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse longitude %q: %w", places[0].Lon, err)
	}

	return domain.Coordinates{Lat: lat, Lng: lng}, nil
}
