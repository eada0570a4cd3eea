package handlers

import (
	"time"

	"pdn-thumbnailer/internal/extract"
	"pdn-thumbnailer/internal/startup"
)

// PressureGauge reports whether the process should shed load.
// memory.Monitor implements it.
type PressureGauge interface {
	IsPaused() bool
	ShouldThrottle() bool
	GetStats() (current, limit int64, usage float64)
}

type Handlers struct {
	extractor   *extract.Extractor
	documentDir string
	decoder     string
	defaultSize int
	maxSize     int
	memory      PressureGauge
	startTime   time.Time
}

// New wires handlers to x. mem may be nil when memory backpressure is not
// configured.
func New(x *extract.Extractor, config *startup.Config, mem PressureGauge) *Handlers {
	return &Handlers{
		extractor:   x,
		documentDir: config.DocumentDir,
		decoder:     config.Decoder,
		defaultSize: config.DefaultThumbnailSize,
		maxSize:     config.MaxThumbnailSize,
		memory:      mem,
		startTime:   time.Now(),
	}
}

func (h *Handlers) underPressure() bool {
	return h.memory != nil && h.memory.IsPaused()
}

func (h *Handlers) throttled() bool {
	return h.memory != nil && h.memory.ShouldThrottle()
}
