package domain

import "errors"

// Pipeline error taxonomy. Each stage of the orchestrator wraps its
// failures around one of these sentinels; the boundary classifies them
// into a user-facing message and a history failure class.
var (
	// ErrAnalysisFailed covers probe failures: bad URL, network error,
	// unsupported site. Reported immediately, never retried.
	ErrAnalysisFailed = errors.New("url analysis failed")

	// ErrSessionExpired means a choice event arrived with no pending URL
	// for the session.
	ErrSessionExpired = errors.New("session expired")

	// ErrFetchFailed means the external engine failed to download or
	// transcode.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrOutputMissing means a reported-successful fetch left no file at
	// the expected path or at any fallback extension.
	ErrOutputMissing = errors.New("output file not found")

	// ErrArtifactTooLarge means the fetched artifact exceeds the
	// configured delivery size limit.
	ErrArtifactTooLarge = errors.New("artifact exceeds size limit")

	// ErrDeliveryFailed means transmission to the chat transport failed
	// after a successful local fetch.
	ErrDeliveryFailed = errors.New("delivery failed")
)

// FailureClass maps a pipeline error to its history/metrics label.
func FailureClass(err error) string {
	switch {
	case errors.Is(err, ErrAnalysisFailed):
		return "analysis"
	case errors.Is(err, ErrSessionExpired):
		return "expired"
	case errors.Is(err, ErrOutputMissing):
		return "missing_output"
	case errors.Is(err, ErrArtifactTooLarge):
		return "too_large"
	case errors.Is(err, ErrDeliveryFailed):
		return "delivery"
	case errors.Is(err, ErrFetchFailed):
		return "fetch"
	default:
		return "internal"
	}
}
