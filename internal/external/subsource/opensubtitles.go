package subsource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/retry"
)

const openSubtitlesBaseURL = "https://api.opensubtitles.com/api/v1"

// OpenSubtitles finds subtitles by external id
type OpenSubtitles struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	retryConfig retry.Config
}

// ClientConfig holds subtitle service client configuration
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	RetryConfig retry.Config
}

type openSubtitlesResponse struct {
	Data []struct {
		URL        string `json:"url"`
		Attributes struct {
			URL string `json:"url"`
		} `json:"attributes"`
	} `json:"data"`
}

// NewOpenSubtitles creates an OpenSubtitles finder
func NewOpenSubtitles(cfg ClientConfig) *OpenSubtitles {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openSubtitlesBaseURL
	}
	cfg = withClientDefaults(cfg)

	return &OpenSubtitles{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		retryConfig: cfg.RetryConfig,
	}
}

// Name implements Finder
func (o *OpenSubtitles) Name() string {
	return "opensubtitles"
}

// Find implements Finder. The id is sent without its "tt" prefix.
func (o *OpenSubtitles) Find(ctx context.Context, q Query) (string, error) {
	if q.ExternalID == "" {
		return "", notFound(q)
	}

	params := url.Values{}
	params.Set("imdb_id", strings.TrimPrefix(q.ExternalID, "tt"))
	params.Set("language_code", q.Language)
	endpoint := fmt.Sprintf("%s/subtitles?%s", o.baseURL, params.Encode())

	var response openSubtitlesResponse
	err := retry.Do(ctx, o.retryConfig, func() error {
		return getJSON(ctx, o.httpClient, o.Name(), endpoint, map[string]string{"Api-Key": o.apiKey}, &response)
	}, errors.IsRetryable)
	if err != nil {
		return "", err
	}

	for _, d := range response.Data {
		if d.URL != "" {
			return d.URL, nil
		}
		if d.Attributes.URL != "" {
			return d.Attributes.URL, nil
		}
	}
	return "", notFound(q)
}
