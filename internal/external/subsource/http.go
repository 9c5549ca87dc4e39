package subsource

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/retry"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 5 << 20
)

func withClientDefaults(cfg ClientConfig) ClientConfig {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.WithAttempts(1)
	}
	return cfg
}

func get(ctx context.Context, client *http.Client, service, endpoint string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.ExternalServiceError(service, "failed to create request", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		var netErr net.Error
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			return nil, errors.Wrap(err, errors.CodeServiceTimeout, service+" request timed out")
		}
		return nil, errors.ExternalServiceError(service, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.ExternalServiceError(service, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.StatusError(service, resp.StatusCode, string(body))
	}
	return body, nil
}

func getJSON(ctx context.Context, client *http.Client, service, endpoint string, headers map[string]string, result interface{}) error {
	if headers == nil {
		headers = map[string]string{}
	}
	headers["Accept"] = "application/json"

	body, err := get(ctx, client, service, endpoint, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return errors.ParseError("failed to decode "+service+" response", err)
	}
	return nil
}
