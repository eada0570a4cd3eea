package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdn-thumbnailer/internal/extract"
	"pdn-thumbnailer/internal/filesystem"
	"pdn-thumbnailer/internal/handlers"
	"pdn-thumbnailer/internal/logging"
	"pdn-thumbnailer/internal/media"
	"pdn-thumbnailer/internal/memory"
	"pdn-thumbnailer/internal/metrics"
	"pdn-thumbnailer/internal/middleware"
	"pdn-thumbnailer/internal/startup"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// GOMEMLIMIT must be in place before anything allocates heavily
	memResult := memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	startup.LogMemoryConfig(memResult)

	// Metrics
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"documents": config.DocumentDir,
	}))

	// Platform decides the thumbnail background
	host, err := config.ResolvePlatform()
	if err != nil {
		startup.LogFatal("Platform error: %v", err)
	}
	alphaClear := host.SupportsAlphaClear(config.AlphaClearMinVersion)
	metrics.SetAlphaClear(alphaClear)
	startup.LogPlatformInit(host, alphaClear)

	// Pixel decoder
	decoder, decoderName := newDecoder(config)
	config.Decoder = decoderName

	interpolator, err := media.ParseInterpolation(config.Interpolation)
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	extractor := &extract.Extractor{
		Decoder: decoder,
		Resizer: media.Resizer{
			SupportsAlphaClear: alphaClear,
			Interpolator:       interpolator,
		},
		Observer: metrics.NewExtractionObserver("http"),
	}

	// Memory backpressure
	memMonitor := memory.NewMonitor(memory.DefaultConfig())
	memMonitor.Start()

	h := handlers.New(extractor, config, memMonitor)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := newServer(":"+config.Port, wrapHandler(router, config))

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(":"+config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, memMonitor)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

// newDecoder returns the configured decoder and the name of the one
// actually in use. libvips failing to start falls back to the Go codecs.
func newDecoder(config *startup.Config) (media.Decoder, string) {
	if config.Decoder != startup.DecoderVips {
		startup.LogDecoderInit(startup.DecoderStd, nil)
		return media.StdDecoder{MaxPixels: config.MaxImagePixels}, startup.DecoderStd
	}

	err := media.InitVips()
	startup.LogDecoderInit(startup.DecoderVips, err)
	if err != nil {
		return media.StdDecoder{MaxPixels: config.MaxImagePixels}, startup.DecoderStd
	}
	return media.VipsDecoder{MaxPixels: config.MaxImagePixels}, startup.DecoderVips
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
	api.HandleFunc("/thumbnail/{path:.*}", h.GetThumbnail).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/info/{path:.*}", h.GetInfo).Methods(http.MethodGet)
	api.HandleFunc("/documents", h.ListDocuments).Methods(http.MethodGet)

	return r
}

// wrapHandler applies the middleware chain, outermost first: request ID,
// access log, metrics, compression.
func wrapHandler(router http.Handler, config *startup.Config) http.Handler {
	compressed := middleware.Compression(middleware.DefaultCompressionConfig())(router)

	measured := middleware.Metrics(middleware.DefaultMetricsConfig())(compressed)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	logged := middleware.Logger(loggingConfig)(measured)

	return middleware.RequestID()(logged)
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func newMetricsServer(addr string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	return newServer(addr, metricsMux)
}

func handleShutdown(srv, metricsSrv *http.Server, memMonitor *memory.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Stopping memory monitor")
	memMonitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	startup.LogShutdownStep("Releasing decoder")
	media.ShutdownVips()
	startup.LogShutdownStepComplete("Decoder released")

	startup.LogShutdownComplete()
}
