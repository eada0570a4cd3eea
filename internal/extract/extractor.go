package extract

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	"pdn-thumbnailer/internal/filesystem"
	"pdn-thumbnailer/internal/logging"
	"pdn-thumbnailer/internal/media"
	"pdn-thumbnailer/internal/memstream"
	"pdn-thumbnailer/internal/pdnheader"
	"pdn-thumbnailer/internal/transcoder"
)

// FileOpener opens a document for reading.
type FileOpener interface {
	Open(path string) (io.ReadCloser, error)
}

// OpenFunc adapts a function to FileOpener.
type OpenFunc func(path string) (io.ReadCloser, error)

// Open calls f(path).
func (f OpenFunc) Open(path string) (io.ReadCloser, error) {
	return f(path)
}

// Observer receives pipeline measurements. metrics.ExtractionObserver
// implements it.
type Observer interface {
	ExtractionStarted()
	ExtractionFinished(result string, durationSeconds float64)
	PhaseFinished(phase string, durationSeconds float64)
	PayloadDecoded(n int)
}

// Extractor produces thumbnails from documents. The zero value opens files
// with NFS retry, decodes with the Go codecs and renders on white.
type Extractor struct {
	Opener   FileOpener
	Decoder  media.Decoder
	Resizer  media.Resizer
	Observer Observer

	// OnTransition, if set, is called for every state change of every call.
	OnTransition func(path string, from, to State)
}

func (x *Extractor) opener() FileOpener {
	if x.Opener != nil {
		return x.Opener
	}
	return filesystem.Opener{Retry: filesystem.DefaultRetryConfig()}
}

func (x *Extractor) decoder() media.Decoder {
	if x.Decoder != nil {
		return x.Decoder
	}
	return media.StdDecoder{}
}

// ExtractThumbnail reads the preview embedded in the document at path and
// fits it to size. It opens and closes exactly one file and either returns
// a bitmap or an error matching ErrExtractionFailed.
func (x *Extractor) ExtractThumbnail(path string, size media.RequestedSize) (img image.Image, err error) {
	r := x.begin(path)
	defer func() { r.finish(err) }()

	f, err := x.opener().Open(path)
	if err != nil {
		return nil, r.fail(err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn("failed to close %s: %v", path, cerr)
		}
	}()

	r.enter(StateReadingMagic)
	if err := pdnheader.CheckMagic(f); err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateReadingHeader)
	header, err := pdnheader.ReadHeaderText(f)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateParsingHeader)
	thumb, err := pdnheader.LocateThumbnail(header)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateDecodingBase64)
	data, err := transcoder.Decode(thumb.Payload)
	if err != nil {
		return nil, r.fail(err)
	}
	r.payload(len(data), thumb.Format)

	r.enter(StateDecodingImage)
	bitmap, err := x.decoder().Decode(memstream.New(data))
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateResizing)
	out, err := x.Resizer.Render(bitmap, size)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateDone)
	logging.Debug("Extracted %s thumbnail %dx%d from %s", thumb.Format, out.Bounds().Dx(), out.Bounds().Dy(), path)
	return out, nil
}

// ExtractContext runs ExtractThumbnail but stops waiting when ctx ends. The
// abandoned call still runs to completion in the background; its result is
// discarded.
func (x *Extractor) ExtractContext(ctx context.Context, path string, size media.RequestedSize) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: KindCanceled, State: StateOpening, Path: path, Err: err}
	}

	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := x.ExtractThumbnail(path, size)
		done <- result{img, err}
	}()

	select {
	case res := <-done:
		return res.img, res.err
	case <-ctx.Done():
		return nil, &Error{Kind: KindCanceled, State: StateOpening, Path: path, Err: ctx.Err()}
	}
}

// Inspect parses the document header without decoding the preview.
func (x *Extractor) Inspect(path string) (*pdnheader.Document, error) {
	f, err := x.opener().Open(path)
	if err != nil {
		return nil, &Error{Kind: classify(err), State: StateOpening, Path: path, Err: err}
	}
	defer f.Close()

	doc, err := pdnheader.Parse(f)
	if err != nil {
		return nil, &Error{Kind: classify(err), State: StateParsingHeader, Path: path, Err: err}
	}
	return doc, nil
}

// run tracks one ExtractThumbnail call.
type run struct {
	x          *Extractor
	path       string
	state      State
	start      time.Time
	phaseStart time.Time
}

func (x *Extractor) begin(path string) *run {
	now := time.Now()
	if x.Observer != nil {
		x.Observer.ExtractionStarted()
	}
	return &run{x: x, path: path, state: StateOpening, start: now, phaseStart: now}
}

func (r *run) enter(next State) {
	prev := r.state
	r.closePhase()
	r.state = next

	if r.x.OnTransition != nil {
		r.x.OnTransition(r.path, prev, next)
	}
	if logging.IsDebugEnabled() {
		logging.Debug("extract %s: %s -> %s", r.path, prev, next)
	}
}

// closePhase reports time spent in the current state.
func (r *run) closePhase() {
	now := time.Now()
	if phase := r.state.phase(); phase != "" && r.x.Observer != nil {
		r.x.Observer.PhaseFinished(phase, now.Sub(r.phaseStart).Seconds())
	}
	r.phaseStart = now
}

func (r *run) payload(n int, format pdnheader.Format) {
	if r.x.Observer != nil {
		r.x.Observer.PayloadDecoded(n)
	}
	logging.Debug("extract %s: decoded %d byte %s payload", r.path, n, format)
}

// fail wraps err with the current state and moves to the terminal state.
func (r *run) fail(err error) error {
	xerr := &Error{Kind: classify(err), State: r.state, Path: r.path, Err: err}

	if xerr.Kind == KindNotApplicable {
		r.enter(StateNotApplicable)
		logging.Debug("No thumbnail in %s: %v", r.path, err)
	} else {
		r.enter(StateFailed)
		logging.Warn("Thumbnail extraction failed for %s: %v", r.path, xerr)
	}
	return xerr
}

func (r *run) finish(err error) {
	if r.x.Observer == nil {
		return
	}
	result := "success"
	if err != nil {
		var xerr *Error
		if errors.As(err, &xerr) {
			result = xerr.Kind.Label()
		}
	}
	r.x.Observer.ExtractionFinished(result, time.Since(r.start).Seconds())
}
