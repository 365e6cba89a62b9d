package domain

import "fmt"

// secondsPerMegabyte is the per-megabyte constant behind the user-facing
// download time estimate. It is not a scheduling input.
const secondsPerMegabyte = 3.0

// ProbeResult is the outcome of a metadata-only query against a URL.
// Duration and Size may be zero when the extractor does not report them.
type ProbeResult struct {
	ID         string // stable content identifier, names the artifact on disk
	Title      string
	Ext        string // native extension reported by the extractor
	Duration   int64  // seconds
	Size       int64  // bytes
	SizeApprox bool   // Size is an estimate, not an exact value
}

// SizeMB returns the reported size in megabytes.
func (p *ProbeResult) SizeMB() float64 {
	return float64(p.Size) / (1024 * 1024)
}

// EstimatedFetchSeconds derives the user-facing download time estimate
// from the reported size.
func (p *ProbeResult) EstimatedFetchSeconds() float64 {
	return p.SizeMB() * secondsPerMegabyte
}

// DurationString formats the duration as M:SS.
func (p *ProbeResult) DurationString() string {
	return fmt.Sprintf("%d:%02d", p.Duration/60, p.Duration%60)
}
