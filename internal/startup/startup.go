package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"pdn-thumbnailer/internal/logging"
	"pdn-thumbnailer/internal/media"
	"pdn-thumbnailer/internal/memory"
	"pdn-thumbnailer/internal/platform"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Decoder names accepted by DECODER.
const (
	DecoderStd  = "std"
	DecoderVips = "vips"
)

// Config holds all application configuration
type Config struct {
	DocumentDir     string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogStaticFiles  bool
	LogHealthChecks bool

	// Decoder is DecoderStd or DecoderVips.
	Decoder string

	// Interpolation is a media.Interpolation* name, validated.
	Interpolation string

	// AlphaClearMinVersion is the first platform version rendered on a
	// transparent background.
	AlphaClearMinVersion platform.Version

	// PlatformVersion, if set, replaces the detected platform version.
	PlatformVersion string

	DefaultThumbnailSize int
	MaxThumbnailSize     int
	MaxImagePixels       int
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	documentDir := getEnv("DOCUMENT_DIR", "/documents")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	decoder := strings.ToLower(getEnv("DECODER", DecoderStd))
	interpolation := strings.ToLower(getEnv("INTERPOLATION", media.InterpolationBicubic))
	alphaClearStr := getEnv("ALPHA_CLEAR_MIN_VERSION", platform.AlphaClearMinVersion.String())
	platformVersion := getEnv("PLATFORM_VERSION", "")
	defaultSize := getEnvInt("DEFAULT_THUMBNAIL_SIZE", 256)
	maxSize := getEnvInt("MAX_THUMBNAIL_SIZE", 1024)
	maxPixels := getEnvInt("MAX_IMAGE_PIXELS", media.DefaultMaxImagePixels)

	logging.Info("  DOCUMENT_DIR:            %s", documentDir)
	logging.Info("  PORT:                    %s", port)
	logging.Info("  METRICS_PORT:            %s", metricsPort)
	logging.Info("  METRICS_ENABLED:         %v", metricsEnabled)
	logging.Info("  DECODER:                 %s", decoder)
	logging.Info("  INTERPOLATION:           %s", interpolation)
	logging.Info("  ALPHA_CLEAR_MIN_VERSION: %s", alphaClearStr)
	if platformVersion != "" {
		logging.Info("  PLATFORM_VERSION:        %s", platformVersion)
	}
	logging.Info("  DEFAULT_THUMBNAIL_SIZE:  %d", defaultSize)
	logging.Info("  MAX_THUMBNAIL_SIZE:      %d", maxSize)
	logging.Info("  MAX_IMAGE_PIXELS:        %d", maxPixels)
	logging.Info("  LOG_STATIC_FILES:        %v", logStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:       %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:               %s", logging.GetLevel())

	if decoder != DecoderStd && decoder != DecoderVips {
		return nil, fmt.Errorf("invalid DECODER %q: must be %q or %q", decoder, DecoderStd, DecoderVips)
	}

	if _, err := media.ParseInterpolation(interpolation); err != nil {
		return nil, fmt.Errorf("invalid INTERPOLATION: %w", err)
	}

	alphaClear, err := platform.ParseVersion(alphaClearStr)
	if err != nil {
		logging.Warn("  Invalid ALPHA_CLEAR_MIN_VERSION, using default: %s", platform.AlphaClearMinVersion)
		alphaClear = platform.AlphaClearMinVersion
	}

	if platformVersion != "" {
		if _, err := platform.ParseVersion(platformVersion); err != nil {
			return nil, fmt.Errorf("invalid PLATFORM_VERSION: %w", err)
		}
	}

	if maxSize <= 0 {
		return nil, fmt.Errorf("MAX_THUMBNAIL_SIZE must be positive, got %d", maxSize)
	}
	if defaultSize <= 0 || defaultSize > maxSize {
		return nil, fmt.Errorf("DEFAULT_THUMBNAIL_SIZE must be in 1..%d, got %d", maxSize, defaultSize)
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	documentDir, err = filepath.Abs(documentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document directory path: %w", err)
	}
	logging.Info("  Document directory (absolute): %s", documentDir)

	// Documents are mounted read-only; a missing directory is reported,
	// not created.
	if err := checkDirectory(documentDir); err != nil {
		logging.Warn("  Document directory issue: %v", err)
	}

	return &Config{
		DocumentDir:          documentDir,
		Port:                 port,
		MetricsPort:          metricsPort,
		MetricsEnabled:       metricsEnabled,
		LogStaticFiles:       logStaticFiles,
		LogHealthChecks:      logHealthChecks,
		Decoder:              decoder,
		Interpolation:        interpolation,
		AlphaClearMinVersion: alphaClear,
		PlatformVersion:      platformVersion,
		DefaultThumbnailSize: defaultSize,
		MaxThumbnailSize:     maxSize,
		MaxImagePixels:       maxPixels,
	}, nil
}

// ResolvePlatform returns the host thumbnails are rendered for:
// PlatformVersion when configured, otherwise the running system.
func (c *Config) ResolvePlatform() (platform.Host, error) {
	if c.PlatformVersion != "" {
		return platform.Override(runtime.GOOS, c.PlatformVersion)
	}
	return platform.Current(), nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogMemoryConfig logs the outcome of memory.ConfigureFromEnv
func LogMemoryConfig(result memory.ConfigResult) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	if !result.Configured {
		logging.Info("  GOMEMLIMIT: not configured")
		logging.Info("  (set MEMORY_LIMIT or GOMEMLIMIT to enable memory backpressure)")
		return
	}

	logging.Info("  Source:          %s", result.Source)
	logging.Info("  GOMEMLIMIT:      %s", memory.FormatBytes(result.GoMemLimit))
	if result.ContainerLimit > 0 {
		logging.Info("  Container limit: %s", memory.FormatBytes(result.ContainerLimit))
		logging.Info("  Ratio:           %.0f%%", result.Ratio*100)
	}
}

// LogDecoderInit logs which pixel decoder serves embedded thumbnails. err
// is the libvips startup error, if any.
func LogDecoderInit(decoder string, err error) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DECODER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if decoder != DecoderVips {
		logging.Info("  [OK] Using Go image codecs")
		return
	}
	if err != nil {
		logging.Warn("  libvips failed to start: %v", err)
		logging.Warn("  Falling back to Go image codecs")
		return
	}
	logging.Info("  [OK] libvips is available")
}

// LogPlatformInit logs the resolved platform and the background the
// resizer will clear to.
func LogPlatformInit(host platform.Host, alphaClear bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PLATFORM")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Host:            %s", host)
	if alphaClear {
		logging.Info("  Background:      transparent")
	} else {
		logging.Info("  Background:      white (platform predates alpha thumbnails)")
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Thumbnails:    http://0.0.0.0:%s/api/thumbnail/{path}", config.Port)
	logging.Info("    Metrics:       %s", metricsEndpoint("0.0.0.0", config))
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    Thumbnails:    http://localhost:%s/api/thumbnail/{path}", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       %s", metricsEndpoint("localhost", config))
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

func metricsEndpoint(host string, config ServerConfig) string {
	if !config.MetricsEnabled {
		return enabledString(false)
	}
	return fmt.Sprintf("http://%s:%s/metrics", host, config.MetricsPort)
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  ____  _   __   ________                __
   / __ \/ __ \/ | / /  /_  __/ /_  __  ______ _/ /_
  / /_/ / / / /  |/ /    / / / __ \/ / / / __ '__ \
 / ____/ /_/ / /|  /    / / / / / / /_/ / / / / / /
/_/   /_____/_/ |_/    /_/ /_/ /_/\__,_/_/ /_/ /_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func checkDirectory(path string) error {
	logging.Debug("  Checking document directory: %s", path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	if logging.IsDebugEnabled() {
		entries, err := os.ReadDir(path)
		if err == nil {
			fileCount, dirCount := 0, 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    Contents: %d files, %d directories (top level)", fileCount, dirCount)
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
