package domain

import "context"

// FetchOptions parameterizes one download handed to the external engine.
type FetchOptions struct {
	// OutputTemplate is the engine's output path template, normally
	// "<dir>/<id>.<native ext>".
	OutputTemplate string

	// Format is the selector expression from the site profile.
	Format string

	// ExtractorArgs carries profile-specific extractor arguments.
	ExtractorArgs []string

	// Postprocess selects the container/codec conversion for the chosen
	// modality.
	Postprocess PostprocessKind

	// Progress receives fetch progress events. The engine owns the
	// channel for the duration of the fetch and closes it when the fetch
	// ends. Sends must never block the download; events may be dropped.
	Progress chan<- ProgressEvent
}

// FetchEngine is the external extraction engine. Probe performs a
// metadata-only query with download disabled; Fetch downloads and
// transcodes according to opts.
type FetchEngine interface {
	Probe(ctx context.Context, url string) (*ProbeResult, error)
	Fetch(ctx context.Context, url string, opts FetchOptions) error
}
