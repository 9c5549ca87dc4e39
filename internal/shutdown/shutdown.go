package shutdown

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/glefebvre/cinevo/internal/logger"
)

// Hook releases one resource during shutdown
type Hook func(context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler runs registered hooks when the process is asked to stop
type Handler struct {
	mu             sync.Mutex
	hooks          []namedHook
	timeout        time.Duration
	signalChan     chan os.Signal
	shutdownChan   chan struct{}
	isShuttingDown bool
	logger         *logger.Logger
}

// New creates a new shutdown handler
func New(timeout time.Duration) *Handler {
	return &Handler{
		timeout:      timeout,
		signalChan:   make(chan os.Signal, 1),
		shutdownChan: make(chan struct{}),
		logger:       logger.AppLogger(),
	}
}

// Register adds a hook. Hooks run one at a time in reverse order of
// registration, so the HTTP server stops before the database closes.
func (h *Handler) Register(name string, fn Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: fn})
}

// Wait blocks until SIGINT or SIGTERM, or until ctx is done, then shuts down
func (h *Handler) Wait(ctx context.Context) error {
	signal.Notify(h.signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(h.signalChan)

	select {
	case sig := <-h.signalChan:
		h.logger.WithFields(map[string]interface{}{"signal": sig.String()}).Info("shutdown signal received")
	case <-ctx.Done():
	}
	return h.Shutdown()
}

// Shutdown runs every hook within the handler timeout. All hook errors are
// returned joined; a second call is a no-op.
func (h *Handler) Shutdown() error {
	h.mu.Lock()
	if h.isShuttingDown {
		h.mu.Unlock()
		return nil
	}
	h.isShuttingDown = true
	hooks := append([]namedHook(nil), h.hooks...)
	h.mu.Unlock()

	close(h.shutdownChan)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, ctx.Err()))
			continue
		}
		if err := hook.fn(ctx); err != nil {
			h.logger.WithFields(map[string]interface{}{"hook": hook.name}).Error("shutdown hook failed", err)
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
			continue
		}
		h.logger.WithFields(map[string]interface{}{"hook": hook.name}).Debug("shutdown hook completed")
	}

	return stderrors.Join(errs...)
}

// IsShuttingDown returns true if shutdown has been initiated
func (h *Handler) IsShuttingDown() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isShuttingDown
}

// ShutdownChan returns a channel that is closed when shutdown is initiated
func (h *Handler) ShutdownChan() <-chan struct{} {
	return h.shutdownChan
}

// TriggerShutdown programmatically triggers a shutdown
func (h *Handler) TriggerShutdown() {
	select {
	case h.signalChan <- syscall.SIGTERM:
	default:
	}
}
