// Package external contains clients for services outside the recommendation
// engine. The engine itself never performs I/O; these clients enrich its
// output at the API layer.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/fisioflow/recommendation-engine/internal/domain"
)

// VideoAsset is a resolved catalog entry for one video id.
type VideoAsset struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	DurationSec int    `json:"duration_sec"`
	Available   bool   `json:"available"`
}

// MediaCatalogClient resolves video ids from a treatment plan into playable
// URLs via the clinic content service.
type MediaCatalogClient struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	retryCount int
}

// NewMediaCatalogClient creates a new media catalog client
func NewMediaCatalogClient(config domain.MediaCatalogConfig) *MediaCatalogClient {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 5
	}
	if config.RetryCount == 0 {
		config.RetryCount = 2
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "MediaCatalog",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	return &MediaCatalogClient{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		breaker:    breaker,
		retryCount: config.RetryCount,
	}
}

// ResolveVideo resolves a single video id into a catalog asset.
func (m *MediaCatalogClient) ResolveVideo(ctx context.Context, videoID string) (*VideoAsset, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video id cannot be empty")
	}

	if err := m.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	result, err := m.breaker.Execute(func() (interface{}, error) {
		return m.fetchVideo(ctx, videoID)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, fmt.Errorf("media catalog unavailable (circuit breaker open)")
		}
		return nil, fmt.Errorf("media catalog query failed: %w", err)
	}

	return result.(*VideoAsset), nil
}

// ResolveVideos resolves every video id of a plan. Ids the catalog does not
// know come back as unavailable assets instead of failing the whole batch.
func (m *MediaCatalogClient) ResolveVideos(ctx context.Context, videoIDs []string) ([]*VideoAsset, error) {
	assets := make([]*VideoAsset, 0, len(videoIDs))
	for _, id := range videoIDs {
		asset, err := m.ResolveVideo(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			assets = append(assets, &VideoAsset{ID: id, Available: false})
			continue
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (m *MediaCatalogClient) fetchVideo(ctx context.Context, videoID string) (*VideoAsset, error) {
	endpoint := fmt.Sprintf("%s/v1/videos/%s", m.baseURL, url.PathEscape(videoID))

	var lastErr error
	for attempt := 0; attempt <= m.retryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := m.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var asset VideoAsset
			if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
				resp.Body.Close()
				return nil, fmt.Errorf("decoding response: %w", err)
			}
			resp.Body.Close()
			asset.Available = true
			return &asset, nil
		case http.StatusNotFound:
			resp.Body.Close()
			return &VideoAsset{ID: videoID, Available: false}, nil
		default:
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			// Retry only server-side failures.
			if resp.StatusCode < 500 {
				return nil, lastErr
			}
		}
	}

	return nil, fmt.Errorf("media catalog request failed after %d attempts: %w", m.retryCount+1, lastErr)
}

// BreakerState returns the current circuit breaker state for health checks.
func (m *MediaCatalogClient) BreakerState() gobreaker.State {
	return m.breaker.State()
}
