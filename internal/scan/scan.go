package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"pdn-thumbnailer/internal/filesystem"
	"pdn-thumbnailer/internal/logging"
	"pdn-thumbnailer/internal/metrics"
	"pdn-thumbnailer/internal/pdnheader"
)

// DocumentExtensions maps file extensions to whether they are probed by
// default. Content decides in the end: a .pdn file without the signature is
// skipped.
var DocumentExtensions = map[string]bool{
	".pdn": true,
}

// EnvWorkers overrides the default probe worker count.
const EnvWorkers = "SCAN_WORKERS"

// Config configures the parallel directory walker
type Config struct {
	// NumWorkers is the number of parallel probe workers
	NumWorkers int
	// ChannelBuffer is the size of the work channel buffer
	ChannelBuffer int
	// SkipHidden skips files and directories starting with "."
	SkipHidden bool
	// AllFiles probes every regular file instead of DocumentExtensions only
	AllFiles bool
}

// DefaultConfig returns sensible defaults based on available resources
func DefaultConfig() Config {
	// Default to 3 workers - safe for NFS and still performant for local filesystems
	numWorkers := 3
	if override := os.Getenv(EnvWorkers); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			numWorkers = count
		}
	}

	return Config{
		NumWorkers:    numWorkers,
		ChannelBuffer: 256,
		SkipHidden:    true,
	}
}

// Document is a file that carries the PDN3 signature.
type Document struct {
	// Path is the full path on disk.
	Path    string    `json:"-"`
	RelPath string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

type fileJob struct {
	path    string
	relPath string
	info    os.FileInfo
}

type fileResult struct {
	doc *Document
	err error
}

// Walker finds documents under a root directory. Candidate files are
// probed for the signature on a pool of workers.
type Walker struct {
	config Config
	root   string

	documents atomic.Int64
	skipped   atomic.Int64
	errs      atomic.Int64
}

// NewWalker creates a walker over root.
func NewWalker(root string, config Config) *Walker {
	config.NumWorkers = max(1, config.NumWorkers)
	config.ChannelBuffer = max(0, config.ChannelBuffer)
	return &Walker{config: config, root: root}
}

// Walk returns every document under the root, sorted by relative path.
// Unreadable entries are logged and counted, not fatal. A canceled ctx
// stops the walk and returns ctx.Err() with what was found so far.
func (w *Walker) Walk(ctx context.Context) ([]Document, error) {
	info, err := filesystem.StatWithRetry(w.root, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", w.root)
	}

	logging.Debug("Scanning %s with %d workers", w.root, w.config.NumWorkers)
	startTime := time.Now()
	metrics.ScanWorkers.Set(float64(w.config.NumWorkers))

	jobs := make(chan fileJob, w.config.ChannelBuffer)
	results := make(chan fileResult, w.config.ChannelBuffer)

	var wg sync.WaitGroup
	for i := 0; i < w.config.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case results <- w.probe(job):
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	var docs []Document
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			if result.doc != nil {
				docs = append(docs, *result.doc)
			}
		}
	}()

	walkErr := w.enqueue(ctx, jobs)
	close(jobs)
	wg.Wait()
	close(results)
	<-collected

	slices.SortFunc(docs, func(a, b Document) int { return strings.Compare(a.RelPath, b.RelPath) })

	duration := time.Since(startTime)
	metrics.ScanDuration.Observe(duration.Seconds())
	logging.Debug("Scan of %s complete: %d documents, %d skipped in %v (errors: %d)",
		w.root, w.documents.Load(), w.skipped.Load(), duration, w.errs.Load())

	if walkErr != nil {
		return docs, walkErr
	}
	return docs, ctx.Err()
}

// enqueue walks the tree and sends candidate files to the workers
func (w *Walker) enqueue(ctx context.Context, jobs chan<- fileJob) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}

		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			w.errs.Add(1)
			metrics.ScanFilesTotal.WithLabelValues("error").Inc()
			return nil // Continue walking
		}

		if path != w.root && w.config.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !w.config.AllFiles && !DocumentExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			//nolint:nilerr // Intentionally continue walking on error - skip this file but process others
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logging.Warn("Error getting info for %s: %v", path, err)
			w.errs.Add(1)
			metrics.ScanFilesTotal.WithLabelValues("error").Inc()
			return nil
		}

		select {
		case jobs <- fileJob{path: path, relPath: filepath.ToSlash(relPath), info: info}:
		case <-ctx.Done():
			return fs.SkipAll
		}
		return nil
	})
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

// probe reads the signature of one candidate.
func (w *Walker) probe(job fileJob) fileResult {
	f, err := filesystem.OpenWithRetry(job.path, filesystem.DefaultRetryConfig())
	if err != nil {
		return w.failed(job, err)
	}
	defer f.Close()

	if err := pdnheader.CheckMagic(f); err != nil {
		if errors.Is(err, pdnheader.ErrNotApplicable) {
			w.skipped.Add(1)
			metrics.ScanFilesTotal.WithLabelValues("skipped").Inc()
			return fileResult{}
		}
		return w.failed(job, err)
	}

	w.documents.Add(1)
	metrics.ScanFilesTotal.WithLabelValues("document").Inc()
	return fileResult{doc: &Document{
		Path:    job.path,
		RelPath: job.relPath,
		Size:    job.info.Size(),
		ModTime: job.info.ModTime(),
	}}
}

func (w *Walker) failed(job fileJob, err error) fileResult {
	logging.Debug("Error probing %s: %v", job.path, err)
	w.errs.Add(1)
	metrics.ScanFilesTotal.WithLabelValues("error").Inc()
	return fileResult{err: err}
}

// Stats returns current processing statistics
func (w *Walker) Stats() (documents, skipped, errs int64) {
	return w.documents.Load(), w.skipped.Load(), w.errs.Load()
}
