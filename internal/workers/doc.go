/*
Package workers sizes and runs the worker pool used for batch thumbnail
extraction.

# Sizing

Decoding and resizing previews is CPU-bound, so the pool gets one worker per
available CPU. GOMAXPROCS is used rather than runtime.NumCPU because it
honours container CPU limits (Go 1.19+):

	numWorkers := workers.ForCPU(8) // max 8 workers

Set PDNTHUMB_WORKERS to override the computed count (still capped by the
limit).

# Running

Process fans items out to n workers and collects one error per item, in
input order:

	errs := workers.Process(ctx, numWorkers, paths, func(ctx context.Context, path string) error {
	    return extractOne(ctx, path)
	})

Items not yet started when ctx is cancelled report ctx.Err().
*/
package workers
