package app

import (
	"errors"
	"fmt"

	"github.com/yourusername/fetchbot/internal/domain"
)

// User-facing texts. Technical detail stays in the operational log; the
// user only ever sees these.
const (
	msgAnalyzing     = "🔍 Analyzing the link..."
	msgAnalyzeFailed = "❌ Could not analyze the link. Please check that it is valid."
	msgLinkExpired   = "❌ The link has expired. Please send it again."
	msgFailed        = "❌ Something went wrong during the download. Please try again later."
	msgTooLarge      = "❌ The file is too large to deliver. Try the audio option or a shorter clip."
)

// userMessage collapses any pipeline error into one localized,
// non-technical message.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrAnalysisFailed):
		return msgAnalyzeFailed
	case errors.Is(err, domain.ErrSessionExpired):
		return msgLinkExpired
	case errors.Is(err, domain.ErrArtifactTooLarge):
		return msgTooLarge
	default:
		return msgFailed
	}
}

// previewText renders the post-probe summary shown above the
// video/audio choice. Approximate sizes are marked as such.
func previewText(probe *domain.ProbeResult) string {
	size := fmt.Sprintf("%.1fMB", probe.SizeMB())
	if probe.SizeApprox {
		size = "~" + size
	}
	return fmt.Sprintf(
		"📌 Content info:\n"+
			"🏷 Title: %s\n"+
			"⏱ Duration: %s\n"+
			"📦 Size: %s\n"+
			"⏳ Estimated download time: %.1fs\n\n"+
			"Choose a download type:",
		probe.Title, probe.DurationString(), size, probe.EstimatedFetchSeconds())
}

// downloadingHeader is the first line of the progress message.
func downloadingHeader(m domain.Modality) string {
	if m == domain.ModalityAudio {
		return "⏳ Downloading as audio..."
	}
	return "⏳ Downloading as video..."
}
