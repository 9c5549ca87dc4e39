package tmdb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/glefebvre/cinevo/internal/circuitbreaker"
	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/retry"
	"golang.org/x/time/rate"
)

const (
	serviceName     = "tmdb"
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 10 << 20

	detailsAppend   = "credits,videos,external_ids"
	tvDetailsAppend = "credits,videos,external_ids,season/1"
)

// Client handles TMDB API interactions
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	region     string
	httpClient *http.Client
	logger     *logger.Logger
	circuitBrk *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
	limiter    *rate.Limiter
}

// Config holds TMDB client configuration
type Config struct {
	APIKey   string
	BaseURL  string
	Language string // e.g. "ar-AR"
	Region   string // e.g. "SA"
	Timeout  time.Duration

	// RetryAttempts is the total number of attempts per request
	RetryAttempts int

	// RequestsPerSecond throttles outgoing requests when positive
	RequestsPerSecond float64

	HTTPClient *http.Client
	Logger     *logger.Logger
}

// ConfigFrom maps application settings onto a client configuration
func ConfigFrom(c config.TMDBConfig) Config {
	return Config{
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Language:          c.Language,
		Region:            c.Region,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RetryAttempts:     c.RetryAttempts,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// NewClient creates a new TMDB API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.AppLogger()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	log := cfg.Logger
	cb := circuitbreaker.New(circuitbreaker.Config{
		Name:        serviceName,
		MaxFailures: 5,
		Timeout:     60 * time.Second,
		// lookups of unknown ids say nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.IsNotFound(err)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.WithFields(map[string]interface{}{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	retryCfg := retry.WithAttempts(cfg.RetryAttempts)
	retryCfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.WithFields(map[string]interface{}{
			"attempt": attempt,
			"wait_ms": wait.Milliseconds(),
			"error":   err,
		}).Debug("retrying TMDB request")
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		region:     cfg.Region,
		httpClient: cfg.HTTPClient,
		logger:     log,
		circuitBrk: cb,
		retryCfg:   retryCfg,
		limiter:    limiter,
	}
}

// Fetch performs a GET against endpoint and returns the raw JSON body. The
// api_key, language and region defaults are merged under params, so caller
// values win.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	query := c.defaultParams()
	for k, v := range params {
		query[k] = v
	}
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, query.Encode())

	operation := func() (json.RawMessage, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var body json.RawMessage
		err := c.circuitBrk.Execute(func() error {
			var err error
			body, err = c.do(ctx, requestURL)
			return err
		})
		if stderrors.Is(err, circuitbreaker.ErrOpenState) || stderrors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return nil, errors.ExternalServiceError(serviceName, "upstream temporarily disabled", err)
		}
		return body, err
	}

	body, err := retry.DoWithResult(ctx, c.retryCfg, operation, errors.IsRetryable)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"endpoint": endpoint,
			"error":    err,
		}).WarnContext(ctx, "TMDB API request failed")
		return nil, err
	}

	return body, nil
}

func (c *Client) defaultParams() url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if c.region != "" {
		params.Set("region", c.region)
	}
	return params
}

func (c *Client) do(ctx context.Context, requestURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.StatusError(serviceName, resp.StatusCode, string(body))
	}

	if !json.Valid(body) {
		return nil, errors.Wrap(fmt.Errorf("invalid JSON body"), errors.CodeMalformedData, "unexpected TMDB response")
	}

	return body, nil
}

func transportError(err error) error {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(err, errors.CodeServiceTimeout, "TMDB request timed out").
			WithContext("service", serviceName)
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Wrap(err, errors.CodeServiceUnavailable, "TMDB unreachable").
		WithContext("service", serviceName)
}

func (c *Client) fetchInto(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	body, err := c.Fetch(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return errors.ParseError("failed to decode TMDB response", err).
			WithContext("endpoint", endpoint)
	}
	return nil
}

func (c *Client) list(ctx context.Context, endpoint string, params url.Values) (*ListResponse, error) {
	var response ListResponse
	if err := c.fetchInto(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return params
}

// PopularMovies lists popular movies
func (c *Client) PopularMovies(ctx context.Context, page int) (*ListResponse, error) {
	return c.list(ctx, "/movie/popular", pageParams(page))
}

// PopularTV lists popular TV shows
func (c *Client) PopularTV(ctx context.Context, page int) (*ListResponse, error) {
	return c.list(ctx, "/tv/popular", pageParams(page))
}

// Trending lists trending titles of a kind ("movie", "tv" or "all") over a
// window ("day" or "week")
func (c *Client) Trending(ctx context.Context, kind, window string) (*ListResponse, error) {
	if kind == "" {
		kind = "movie"
	}
	if window == "" {
		window = "week"
	}
	return c.list(ctx, fmt.Sprintf("/trending/%s/%s", kind, window), url.Values{})
}

// DiscoverMovies lists movies of a genre. The genre "all" (or empty) lists
// popular movies instead.
func (c *Client) DiscoverMovies(ctx context.Context, genre string, page int, sortBy string) (*ListResponse, error) {
	if genre == "" || genre == "all" {
		return c.PopularMovies(ctx, page)
	}
	if sortBy == "" {
		sortBy = "popularity.desc"
	}

	params := pageParams(page)
	params.Set("with_genres", genre)
	params.Set("sort_by", sortBy)
	return c.list(ctx, "/discover/movie", params)
}

// SearchMulti searches movies, shows and people in one call
func (c *Client) SearchMulti(ctx context.Context, query string) (*ListResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	return c.list(ctx, "/search/multi", params)
}

// MovieDetails retrieves a movie with credits, videos and external ids
func (c *Client) MovieDetails(ctx context.Context, id int) (*DetailsResponse, error) {
	return c.details(ctx, fmt.Sprintf("/movie/%d", id), detailsAppend)
}

// TVDetails retrieves a show with credits, videos, external ids and its
// first season
func (c *Client) TVDetails(ctx context.Context, id int) (*DetailsResponse, error) {
	return c.details(ctx, fmt.Sprintf("/tv/%d", id), tvDetailsAppend)
}

func (c *Client) details(ctx context.Context, endpoint, appendTo string) (*DetailsResponse, error) {
	params := url.Values{}
	params.Set("append_to_response", appendTo)

	var details DetailsResponse
	if err := c.fetchInto(ctx, endpoint, params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// CircuitState exposes the breaker state for health reporting
func (c *Client) CircuitState() circuitbreaker.State {
	return c.circuitBrk.State()
}
