package publicapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddelware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/authorizedtester/testgate/pkg/config/types"
	"github.com/authorizedtester/testgate/pkg/gate"
	"github.com/authorizedtester/testgate/pkg/models"
	"github.com/authorizedtester/testgate/pkg/publicapi/middleware"
	"github.com/authorizedtester/testgate/pkg/system"
)

type ServerParams struct {
	Config types.ServerConfig
	Gate   *gate.Config
}

// APIServer fronts the upstream application. Every request passes through
// the gate before it is proxied.
type APIServer struct {
	Router   *echo.Echo
	config   types.ServerConfig
	upstream *url.URL
	engine   *gate.Engine

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	closed   bool
}

// NewAPIServer validates the server configuration and builds the middleware chain.
func NewAPIServer(params ServerParams) (*APIServer, error) {
	if err := params.Config.Validate(); err != nil {
		return nil, models.NewBaseError("invalid server configuration").
			WithCode(models.ConfigurationError).
			WithComponent("APIServer").
			WithCause(err)
	}
	upstream, err := params.Config.UpstreamURL()
	if err != nil {
		return nil, err
	}

	server := &APIServer{
		Router:   echo.New(),
		config:   params.Config,
		upstream: upstream,
		engine:   gate.NewEngine(params.Gate),
	}
	server.registerMiddlewares()
	return server, nil
}

func (apiServer *APIServer) registerMiddlewares() {
	e := apiServer.Router
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Pre(echomiddelware.RequestIDWithConfig(echomiddelware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(
		echomiddelware.Recover(),
		middleware.RequestLogger(log.Logger, zerolog.InfoLevel),
	)

	// a disabled gate is not part of the chain at all
	if apiServer.engine.Config().Enabled() {
		e.Use(middleware.Gate(apiServer.engine,
			middleware.WithSkipper(middleware.SkipPathsSkipper(apiServer.config.SkipPaths))))
	}

	e.Use(echomiddelware.ProxyWithConfig(echomiddelware.ProxyConfig{
		Balancer: echomiddelware.NewRoundRobinBalancer([]*echomiddelware.ProxyTarget{
			{Name: "upstream", URL: apiServer.upstream},
		}),
	}))
}

// GetURI returns the URI the server is listening on, or nil before ListenAndServe.
func (apiServer *APIServer) GetURI() *url.URL {
	apiServer.mu.Lock()
	defer apiServer.mu.Unlock()
	if apiServer.listener == nil {
		return nil
	}
	return &url.URL{Scheme: "http", Host: apiServer.listener.Addr().String()}
}

// ListenAndServe listens for and serves HTTP requests until the server is shut down.
func (apiServer *APIServer) ListenAndServe(ctx context.Context, cm *system.CleanupManager) error {
	listener, err := net.Listen("tcp", apiServer.config.ListenAddress())
	if err != nil {
		return models.NewBaseError("failed to listen on %s", apiServer.config.ListenAddress()).
			WithComponent("APIServer").
			WithCause(err)
	}

	srv := &http.Server{
		Handler:           apiServer.Router,
		ReadHeaderTimeout: apiServer.config.ReadHeaderTimeout,
		ReadTimeout:       apiServer.config.ReadTimeout,
		WriteTimeout:      apiServer.config.WriteTimeout,
		BaseContext: func(net.Listener) context.Context {
			return log.Logger.WithContext(context.Background())
		},
	}

	// Cleanup resources when system is done:
	if cm != nil {
		cm.RegisterCallback(func() error {
			return apiServer.Shutdown(ctx)
		})
	}

	apiServer.mu.Lock()
	if apiServer.closed {
		apiServer.mu.Unlock()
		_ = listener.Close()
		log.Ctx(ctx).Debug().Msg("API server shut down before it started")
		return nil
	}
	apiServer.server = srv
	apiServer.listener = listener
	apiServer.mu.Unlock()

	log.Ctx(ctx).Info().
		Str("Address", listener.Addr().String()).
		Str("Upstream", apiServer.upstream.String()).
		Msg("API server listening")

	err = srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		log.Ctx(ctx).Debug().Str("Address", listener.Addr().String()).Msg("API server closed")
		return nil // expected error if the server is shut down
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by the configured shutdown timeout. A server shut down before
// ListenAndServe never starts serving. The caller's context is only
// used for logging since it is usually already cancelled at this point.
func (apiServer *APIServer) Shutdown(ctx context.Context) error {
	apiServer.mu.Lock()
	apiServer.closed = true
	srv := apiServer.server
	apiServer.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx := context.Background()
	if apiServer.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, apiServer.config.ShutdownTimeout)
		defer cancel()
	}
	log.Ctx(ctx).Debug().Dur("Timeout", apiServer.config.ShutdownTimeout).Msg("shutting down API server")
	return srv.Shutdown(shutdownCtx)
}
