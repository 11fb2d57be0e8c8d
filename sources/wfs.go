package sources

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// WFSSource reads GeoServer layers through WFS 1.0.0 GetFeature requests.
type WFSSource struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewWFSSource(baseURL, token string, client *http.Client) *WFSSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &WFSSource{BaseURL: baseURL, Token: token, Client: client}
}

// RequestURL builds the GetFeature URL for q.
func (s *WFSSource) RequestURL(q Query) (string, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid WFS base URL %q: %w", s.BaseURL, err)
	}
	params := u.Query()
	params.Set("service", "WFS")
	params.Set("version", "1.0.0")
	params.Set("request", "GetFeature")
	params.Set("typeName", q.Collection)
	params.Set("outputFormat", "application/json")
	if q.CRS != "" {
		params.Set("srsName", q.CRS)
	}
	if q.Filter != nil {
		params.Set("CQL_FILTER", q.Filter.Property+"="+boolLiteral(q.Filter.Value))
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (s *WFSSource) Fetch(ctx context.Context, q Query) ([]models.Feature, error) {
	endpoint, err := s.RequestURL(q)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building WFS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", q.Collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("WFS %s returned %d: %s", q.Collection, resp.StatusCode, body)
	}

	var fc models.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", q.Collection, err)
	}
	log.Printf("WFSSource: fetched %d features from %s", len(fc.Features), q)
	return fc.Features, nil
}
