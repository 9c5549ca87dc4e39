// Package subsource looks up subtitle files on third-party subtitle services
// and loads them into tracks.
package subsource

import (
	"context"
	"strings"

	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/logger"
)

// Query describes the subtitle being looked for
type Query struct {
	ExternalID string
	Title      string
	Language   string
}

// Finder resolves a query to a downloadable subtitle URL. A Finder that has
// nothing for the query returns a not-found error.
type Finder interface {
	Name() string
	Find(ctx context.Context, q Query) (string, error)
}

// Chain asks each finder in turn and returns the first URL found
type Chain struct {
	finders []Finder
	logger  *logger.Logger
}

// NewChain creates a chain over finders in priority order
func NewChain(finders ...Finder) *Chain {
	return &Chain{finders: finders, logger: logger.AppLogger()}
}

// Name implements Finder
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.finders))
	for _, f := range c.finders {
		names = append(names, f.Name())
	}
	return strings.Join(names, ",")
}

// Find implements Finder. Finder errors are logged and the next finder is
// tried.
func (c *Chain) Find(ctx context.Context, q Query) (string, error) {
	for _, f := range c.finders {
		url, err := f.Find(ctx, q)
		if err == nil && url != "" {
			return url, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err != nil && !errors.IsNotFound(err) {
			c.logger.WithFields(map[string]interface{}{
				"source":      f.Name(),
				"external_id": q.ExternalID,
				"language":    q.Language,
				"error":       err,
			}).WarnContext(ctx, "subtitle source failed")
		}
	}
	return "", notFound(q)
}

func notFound(q Query) error {
	id := q.ExternalID
	if id == "" {
		id = q.Title
	}
	return errors.NotFoundError("subtitle", id+"/"+q.Language)
}
