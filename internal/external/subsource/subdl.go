package subsource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/retry"
)

const (
	subDLBaseURL     = "https://api.subdl.com/api/v1"
	subDLDownloadURL = "https://dl.subdl.com"
)

// SubDL finds subtitles by title
type SubDL struct {
	baseURL     string
	downloadURL string
	apiKey      string
	httpClient  *http.Client
	retryConfig retry.Config
}

type subDLResponse struct {
	Subtitles []struct {
		URL string `json:"url"`
	} `json:"subtitles"`
}

// NewSubDL creates a SubDL finder
func NewSubDL(cfg ClientConfig) *SubDL {
	if cfg.BaseURL == "" {
		cfg.BaseURL = subDLBaseURL
	}
	cfg = withClientDefaults(cfg)

	return &SubDL{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		downloadURL: subDLDownloadURL,
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		retryConfig: cfg.RetryConfig,
	}
}

// Name implements Finder
func (s *SubDL) Name() string {
	return "subdl"
}

// Find implements Finder. Relative download paths are resolved against the
// SubDL download host.
func (s *SubDL) Find(ctx context.Context, q Query) (string, error) {
	title := strings.TrimSpace(q.Title)
	if title == "" {
		return "", notFound(q)
	}

	params := url.Values{}
	params.Set("query", title)
	params.Set("languages", q.Language)
	params.Set("api_key", s.apiKey)
	endpoint := fmt.Sprintf("%s/subtitles/search?%s", s.baseURL, params.Encode())

	var response subDLResponse
	err := retry.Do(ctx, s.retryConfig, func() error {
		return getJSON(ctx, s.httpClient, s.Name(), endpoint, nil, &response)
	}, errors.IsRetryable)
	if err != nil {
		return "", err
	}

	for _, sub := range response.Subtitles {
		if sub.URL == "" {
			continue
		}
		if strings.HasPrefix(sub.URL, "/") {
			return s.downloadURL + sub.URL, nil
		}
		return sub.URL, nil
	}
	return "", notFound(q)
}
