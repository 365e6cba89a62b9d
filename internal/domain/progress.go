package domain

import "time"

// ProgressStatus is the phase reported by a fetch progress event.
type ProgressStatus string

const (
	ProgressDownloading ProgressStatus = "downloading"
	ProgressFinished    ProgressStatus = "finished"
	ProgressError       ProgressStatus = "error"
)

// ProgressEvent is one observation emitted by the fetch engine during an
// active download. Percent is only meaningful when HasPercent is set.
type ProgressEvent struct {
	Status     ProgressStatus
	Percent    float64
	HasPercent bool
	Elapsed    time.Duration
}
