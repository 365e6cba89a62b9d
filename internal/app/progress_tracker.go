package app

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/fetchbot/internal/domain"
)

const (
	barSegments   = 10
	barFilled     = "▰"
	barEmpty      = "▱"
	renderStepPct = 5
	percentPerSeg = 100 / barSegments
)

// ProgressTracker drains the fetch engine's progress events and edits a
// status message with a throttled textual bar. Only percent values that
// are exact multiples of five are rendered, each at most once, so a noisy
// engine cannot flood the transport. Rendering is best-effort: edit
// failures are logged and never abort the download.
type ProgressTracker struct {
	transport domain.ChatTransport
	chatID    int64
	messageID int
	header    string
	log       *zap.Logger

	rendered map[int]bool
	wg       sync.WaitGroup
}

// NewProgressTracker creates a tracker that edits the given message.
func NewProgressTracker(transport domain.ChatTransport, chatID int64, messageID int, header string, log *zap.Logger) *ProgressTracker {
	return &ProgressTracker{
		transport: transport,
		chatID:    chatID,
		messageID: messageID,
		header:    header,
		log:       log,
		rendered:  make(map[int]bool),
	}
}

// Run consumes events until the channel is closed. It is meant to run in
// its own goroutine; render calls are dispatched without waiting so the
// tracker itself never falls behind the event stream.
func (t *ProgressTracker) Run(events <-chan domain.ProgressEvent) {
	for ev := range events {
		if ev.Status != domain.ProgressDownloading || !ev.HasPercent {
			continue
		}
		// Fractional percents never render; only exact multiples of
		// five do.
		if ev.Percent != math.Trunc(ev.Percent) {
			continue
		}
		pct := int(ev.Percent)
		if pct%renderStepPct != 0 || t.rendered[pct] {
			continue
		}
		t.rendered[pct] = true

		text := t.render(pct, ev.Elapsed)
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			if err := t.transport.EditText(t.chatID, t.messageID, text); err != nil {
				t.log.Warn("progress render failed",
					zap.Int64("chat_id", t.chatID),
					zap.Int("message_id", t.messageID),
					zap.Error(err))
			}
		}()
	}
}

// Wait blocks until all dispatched render calls have finished.
func (t *ProgressTracker) Wait() {
	t.wg.Wait()
}

func (t *ProgressTracker) render(percent int, elapsed time.Duration) string {
	filled := percent / percentPerSeg
	if filled > barSegments {
		filled = barSegments
	}
	bar := strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barSegments-filled)
	return fmt.Sprintf("%s\n%s %d%%\n⏱ %s", t.header, bar, percent, formatElapsed(elapsed))
}

func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
