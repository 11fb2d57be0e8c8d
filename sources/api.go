package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// APISource reads the internal JSON API. Endpoints answer either with a
// FeatureCollection or with a bare array of objects; in the second case each
// object becomes a feature's property bag.
type APISource struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewAPISource(baseURL, token string, client *http.Client) *APISource {
	if client == nil {
		client = http.DefaultClient
	}
	return &APISource{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, Client: client}
}

func (s *APISource) Fetch(ctx context.Context, q Query) ([]models.Feature, error) {
	endpoint := s.BaseURL + "/" + strings.TrimLeft(q.Collection, "/")
	if q.Filter != nil {
		endpoint += "?" + url.Values{q.Filter.Property: {boolLiteral(q.Filter.Value)}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building API request: %w", err)
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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", q.Collection, err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 512 {
			body = body[:512]
		}
		return nil, fmt.Errorf("API %s returned %d: %s", q.Collection, resp.StatusCode, body)
	}

	features, err := DecodeFeatures(body)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", q.Collection, err)
	}
	if q.Filter != nil {
		features = filterBool(features, *q.Filter)
	}
	log.Printf("APISource: fetched %d features from %s", len(features), q)
	return features, nil
}

// DecodeFeatures accepts a FeatureCollection or an array of plain objects.
func DecodeFeatures(body []byte) ([]models.Feature, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var rows []map[string]any
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, err
		}
		features := make([]models.Feature, 0, len(rows))
		for _, row := range rows {
			features = append(features, models.NewFeature(row))
		}
		return features, nil
	}

	var fc models.FeatureCollection
	if err := json.Unmarshal(trimmed, &fc); err != nil {
		return nil, err
	}
	return fc.Features, nil
}

// filterBool applies a filter the backend could not evaluate. Servers that
// already honoured it return only matching rows, so this is a no-op there.
func filterBool(features []models.Feature, f BoolFilter) []models.Feature {
	out := features[:0:0]
	for _, ft := range features {
		if ft.Truthy(f.Property) == f.Value {
			out = append(out, ft)
		}
	}
	return out
}
