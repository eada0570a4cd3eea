package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"pdn-thumbnailer/internal/filesystem"
	"pdn-thumbnailer/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
	statusDown     = "unavailable"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Rendering configuration
	Decoder          string `json:"decoder"`
	AlphaBackground  bool   `json:"alphaBackground"`
	MemoryPaused     bool   `json:"memoryPaused"`
	DocumentDirError string `json:"documentDirError,omitempty"`

	// Memory usage, present when a monitor is configured
	Memory *MemoryStatus `json:"memory,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// MemoryStatus reports the memory monitor's last sample.
type MemoryStatus struct {
	CurrentBytes int64   `json:"currentBytes"`
	LimitBytes   int64   `json:"limitBytes"`
	Usage        float64 `json:"usage"`
	Throttled    bool    `json:"throttled"`
}

func (h *Handlers) memoryStatus() *MemoryStatus {
	if h.memory == nil {
		return nil
	}
	current, limit, usage := h.memory.GetStats()
	return &MemoryStatus{
		CurrentBytes: current,
		LimitBytes:   limit,
		Usage:        usage,
		Throttled:    h.throttled(),
	}
}

// checkDocumentDir returns a description of why the document directory is
// unusable, or "".
func (h *Handlers) checkDocumentDir() string {
	info, err := filesystem.StatWithRetry(h.documentDir, filesystem.DefaultRetryConfig())
	if err != nil {
		if os.IsNotExist(err) {
			return "document directory does not exist"
		}
		return "document directory is not accessible"
	}
	if !info.IsDir() {
		return "document directory is not a directory"
	}
	return ""
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	dirErr := h.checkDocumentDir()
	paused := h.underPressure()

	response := HealthResponse{
		Ready:            dirErr == "" && !paused,
		Version:          startup.Version,
		Uptime:           time.Since(h.startTime).Round(time.Second).String(),
		Decoder:          h.decoder,
		AlphaBackground:  h.extractor.Resizer.SupportsAlphaClear,
		MemoryPaused:     paused,
		DocumentDirError: dirErr,
		Memory:           h.memoryStatus(),
		GoVersion:        runtime.Version(),
		NumCPU:           runtime.NumCPU(),
		NumGoroutine:     runtime.NumGoroutine(),
	}

	switch {
	case dirErr != "":
		response.Status = statusDown
	case paused, h.throttled():
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	w.Header().Set("Content-Type", "application/json")

	// Memory pressure is transient; only a missing document tree is fatal
	if dirErr != "" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.checkDocumentDir() != "" || h.underPressure() {
		writeJSONStatus(w, http.StatusServiceUnavailable, "not_ready")
		return
	}
	writeJSONStatus(w, http.StatusOK, "ready")
}
