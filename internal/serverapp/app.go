// Package serverapp owns the server lifecycle: resource acquisition in
// Init, the serving loop in Start, and LIFO release in Shutdown.
package serverapp

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"shiptrack-graphql/internal/config"
	"shiptrack-graphql/internal/logging"
	"shiptrack-graphql/internal/observability"
	"shiptrack-graphql/internal/store"
)

// App owns runtime resources for the shiptrack-graphql server lifecycle.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	registry *prometheus.Registry
	metrics  *observability.Metrics

	store *store.Store

	graphqlHandler http.Handler
	mux            *http.ServeMux
	handler        http.Handler

	serverAddr string
	srv        *http.Server

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &App{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Store exposes the initialized storage handle, primarily for health checks
// and tests.
func (a *App) Store() *store.Store {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.store
}

// Handler exposes the fully wrapped HTTP handler for tests.
func (a *App) Handler() http.Handler {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.handler
}
