package links

import (
	"context"
	"net/http"
	"time"

	"github.com/glefebvre/cinevo/internal/logger"
	"golang.org/x/sync/errgroup"
)

const (
	probeTimeout     = 5 * time.Second
	probeConcurrency = 4
)

// Prober checks which embed URLs currently answer
type Prober struct {
	client *http.Client
	logger *logger.Logger
}

// NewProber creates a prober. A nil client gets a short-timeout default.
func NewProber(client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{Timeout: probeTimeout}
	}
	return &Prober{client: client, logger: logger.AppLogger()}
}

// Available returns the links whose URL responds with a non-5xx status, in
// input order. Links are probed concurrently.
func (p *Prober) Available(ctx context.Context, links []Link) []Link {
	ok := make([]bool, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, l := range links {
		g.Go(func() error {
			ok[i] = p.reachable(gctx, l.URL)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Link, 0, len(links))
	for i, l := range links {
		if ok[i] {
			out = append(out, l)
		}
	}
	return out
}

func (p *Prober) reachable(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.WithFields(map[string]interface{}{
			"url":   url,
			"error": err,
		}).Debug("embed source unreachable")
		return false
	}
	resp.Body.Close()

	return resp.StatusCode < 500
}
