package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/time/rate"

	"github.com/quickcommerce/insights/internal/api/handlers"
	"github.com/quickcommerce/insights/internal/api/middleware"
	"github.com/quickcommerce/insights/internal/api/response"
	"github.com/quickcommerce/insights/internal/bootstrap"
	"github.com/quickcommerce/insights/internal/config"
	"github.com/quickcommerce/insights/internal/delaymodel"
	"github.com/quickcommerce/insights/internal/observability"
	"github.com/quickcommerce/insights/internal/repository"
	"github.com/quickcommerce/insights/internal/service"
)

// Route paths; also the allowlist for the metrics route label.
const (
	routeHealth         = "/health"
	routeMetrics        = "/metrics"
	routeRoas           = "/v1/marketing/roas"
	routeDelayRisk      = "/v1/delivery/delay-risk"
	routeAssistantAsk   = "/v1/assistant/ask"
	routeAssistantQuery = "/v1/assistant/retrieve"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg           *config.Config
	server        *http.Server
	meterProvider *sdkmetric.MeterProvider
}

// routerDeps are the handlers and cross-cutting pieces the router is assembled from.
// A nil Assistant or MetricsHandler leaves that feature unregistered or answering 503.
type routerDeps struct {
	APIKey         string
	MaxBodyBytes   int64
	Health         *handlers.HealthHandler
	Marketing      *handlers.MarketingHandler
	DelayRisk      *handlers.DelayRiskHandler
	Assistant      *handlers.AssistantHandler
	AskLimiter     *rate.Limiter
	Metrics        *observability.Metrics
	MetricsHandler http.Handler
}

// setupMetrics creates the meter provider, the /metrics handler and the metric families.
func setupMetrics() (*sdkmetric.MeterProvider, http.Handler, *observability.Metrics, error) {
	mp, handler, err := observability.NewMeterProvider("insights-api")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create meter provider: %w", err)
	}

	metrics, err := observability.NewMetrics(mp.Meter("insights"))
	if err != nil {
		if err2 := observability.ShutdownMeterProvider(context.Background(), mp); err2 != nil {
			slog.Error("shutdown meter provider after metrics error", "error", err2)
		}

		return nil, nil, nil, fmt.Errorf("create metrics: %w", err)
	}

	return mp, handler, metrics, nil
}

// loadDelayModel returns the delay predictor, or nil when the artifact does not exist yet.
func loadDelayModel(path string) (service.DelayPredictor, error) {
	model, err := delaymodel.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("delay risk disabled: model artifact not found, run train-delay-model", "path", path)

		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("load delay model: %w", err)
	}

	slog.Info("delay model loaded", "path", path, "auc", model.AUC)

	return model, nil
}

// NewApp builds and wires all components. It does not start the HTTP server; call Run.
func NewApp(ctx context.Context, cfg *config.Config, db *pgxpool.Pool) (*App, error) {
	var (
		meterProvider  *sdkmetric.MeterProvider
		metricsHandler http.Handler
		metrics        *observability.Metrics
		err            error
	)

	if cfg.MetricsEnabled {
		meterProvider, metricsHandler, metrics, err = setupMetrics()
		if err != nil {
			return nil, err
		}
	} else {
		slog.Warn("metrics not enabled (METRICS_ENABLED=false)")
	}

	fail := func(err error) (*App, error) {
		if shutdownErr := observability.ShutdownMeterProvider(context.Background(), meterProvider); shutdownErr != nil {
			slog.Error("shutdown meter provider after startup error", "error", shutdownErr)
		}

		return nil, err
	}

	assistant, feedbackEntries, err := bootstrap.BuildAssistant(ctx, cfg, metrics)
	if err != nil {
		return fail(err)
	}

	predictor, err := loadDelayModel(cfg.DelayModelPath)
	if err != nil {
		return fail(err)
	}

	var assistantMetrics observability.AssistantMetrics
	if metrics != nil {
		assistantMetrics = metrics.Assistant
	}

	deps := routerDeps{
		APIKey:         cfg.APIKey,
		MaxBodyBytes:   cfg.MaxRequestBodyBytes,
		Health:         handlers.NewHealthHandler(feedbackEntries),
		Marketing:      handlers.NewMarketingHandler(service.NewRoasService(repository.NewMarketingRepository(db))),
		DelayRisk:      handlers.NewDelayRiskHandler(service.NewDelayRiskService(predictor, assistantMetrics)),
		AskLimiter:     rate.NewLimiter(rate.Limit(cfg.AssistantRateLimit), cfg.AssistantRateBurst),
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
	}

	if assistant != nil {
		deps.Assistant = handlers.NewAssistantHandler(assistant)
	}

	const (
		readTimeout  = 15 * time.Second
		writeTimeout = 60 * time.Second // generation calls can take tens of seconds
		idleTimeout  = 60 * time.Second
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(deps),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &App{cfg: cfg, server: server, meterProvider: meterProvider}, nil
}

// newRouter builds the handler chain: RequestID -> Logging -> Metrics -> MaxBody -> mux,
// with Auth on /v1/ and the rate limiter on the ask endpoint.
func newRouter(d routerDeps) http.Handler {
	public := http.NewServeMux()
	public.HandleFunc("GET "+routeHealth, d.Health.Check)

	if d.MetricsHandler != nil {
		public.Handle("GET "+routeMetrics, d.MetricsHandler)
	}

	protected := http.NewServeMux()
	protected.HandleFunc("GET "+routeRoas, d.Marketing.Roas)
	protected.HandleFunc("POST "+routeDelayRisk, d.DelayRisk.Predict)

	if d.Assistant != nil {
		protected.Handle("POST "+routeAssistantAsk, middleware.RateLimit(d.AskLimiter)(http.HandlerFunc(d.Assistant.Ask)))
		protected.HandleFunc("POST "+routeAssistantQuery, d.Assistant.Retrieve)
	} else {
		protected.HandleFunc("POST "+routeAssistantAsk, unavailable("assistant"))
		protected.HandleFunc("POST "+routeAssistantQuery, unavailable("assistant"))
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/", middleware.Auth(d.APIKey)(protected))
	mux.Handle("/", public)

	var (
		httpMetrics observability.HTTPMetrics
		recorder    middleware.RequestBodyTooLargeRecorder
	)

	if d.Metrics != nil && d.Metrics.HTTP != nil {
		httpMetrics = d.Metrics.HTTP
		recorder = d.Metrics.HTTP
	}

	var handler http.Handler = mux
	handler = middleware.MaxBody(d.MaxBodyBytes, recorder)(handler)
	handler = middleware.Metrics(httpMetrics,
		routeHealth, routeMetrics, routeRoas, routeDelayRisk, routeAssistantAsk, routeAssistantQuery)(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)

	return handler
}

func unavailable(feature string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.RespondServiceUnavailable(w, feature+" is not configured")
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server fails.
// Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr <- fmt.Errorf("server: %w", err)
		}
	}()

	select {
	case err := <-runErr:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops the server, then flushes metrics. The server error wins over the metrics error.
func (a *App) Shutdown(ctx context.Context) error {
	serverErr := a.server.Shutdown(ctx)
	if errors.Is(serverErr, http.ErrServerClosed) {
		serverErr = nil
	}

	obsErr := observability.ShutdownMeterProvider(ctx, a.meterProvider)

	if serverErr != nil {
		if obsErr != nil {
			slog.Error("shutdown meter provider", "error", obsErr)
		}

		return fmt.Errorf("server shutdown: %w", serverErr)
	}

	return obsErr
}
