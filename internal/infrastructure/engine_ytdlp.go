package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/fetchbot/internal/domain"
)

// progressPattern matches the engine's per-line progress output, e.g.
// "[download]  42.7% of 10.00MiB at 1.00MiB/s ETA 00:06".
var progressPattern = regexp.MustCompile(`\[download\]\s+(\d+(?:\.\d+)?)%`)

// YTDLPEngine drives the external yt-dlp binary.
// Note: exec.Command passes args directly to the process, no shell
// quoting needed; ShellEscapeCommand is used for logging only.
type YTDLPEngine struct {
	binary string
	log    *zap.Logger
}

// NewYTDLPEngine creates an engine around the given binary path.
func NewYTDLPEngine(binary string, log *zap.Logger) *YTDLPEngine {
	return &YTDLPEngine{binary: binary, log: log}
}

// probeInfo is the subset of the engine's JSON metadata the service uses.
type probeInfo struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Ext            string  `json:"ext"`
	Duration       float64 `json:"duration"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}

// Probe performs a metadata-only query with download disabled. Every
// failure mode (network, unsupported site, malformed page) collapses into
// ErrAnalysisFailed.
func (e *YTDLPEngine) Probe(ctx context.Context, url string) (*domain.ProbeResult, error) {
	cmd := exec.CommandContext(ctx, e.binary,
		"--dump-json",
		"--no-playlist",
		"--no-warnings",
		url,
	)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAnalysisFailed, firstLine(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}

	var info probeInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("%w: parsing metadata: %v", domain.ErrAnalysisFailed, err)
	}

	size := info.Filesize
	approx := false
	if size == 0 && info.FilesizeApprox > 0 {
		size = info.FilesizeApprox
		approx = true
	}

	return &domain.ProbeResult{
		ID:         info.ID,
		Title:      info.Title,
		Ext:        info.Ext,
		Duration:   int64(info.Duration),
		Size:       size,
		SizeApprox: approx,
	}, nil
}

// Fetch downloads and transcodes the content. Progress lines are parsed
// from stdout and forwarded to opts.Progress without ever blocking the
// download; the channel is closed when the fetch ends.
func (e *YTDLPEngine) Fetch(ctx context.Context, url string, opts domain.FetchOptions) error {
	if opts.Progress != nil {
		defer close(opts.Progress)
	}

	args := e.buildArgs(url, opts)
	e.log.Debug("running fetch engine", zap.String("cmd", ShellEscapeCommand(e.binary, args...)))

	cmd := exec.CommandContext(ctx, e.binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", e.binary, err)
	}

	if err := scanProgress(stdout, started, opts.Progress); err != nil {
		e.log.Warn("progress output read failed", zap.Error(err))
	}

	if err := cmd.Wait(); err != nil {
		emitProgress(opts.Progress, domain.ProgressEvent{
			Status:  domain.ProgressError,
			Elapsed: time.Since(started),
		})
		if ctx.Err() != nil {
			return fmt.Errorf("fetch timed out: %w", ctx.Err())
		}
		return fmt.Errorf("%s failed: %w: %s", e.binary, err, firstLine(stderr.Bytes()))
	}

	emitProgress(opts.Progress, domain.ProgressEvent{
		Status:     domain.ProgressFinished,
		Percent:    100,
		HasPercent: true,
		Elapsed:    time.Since(started),
	})
	return nil
}

// scanProgress parses progress lines from the engine's stdout and
// forwards them. A read error only ends parsing; the fetch outcome is
// decided by the process exit status.
func scanProgress(r io.Reader, started time.Time, ch chan<- domain.ProgressEvent) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ev, ok := parseProgressLine(scanner.Text(), started); ok {
			emitProgress(ch, ev)
		}
	}
	return scanner.Err()
}

// buildArgs assembles the engine invocation from the fetch options.
func (e *YTDLPEngine) buildArgs(url string, opts domain.FetchOptions) []string {
	args := []string{
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--restrict-filenames",
		"-o", opts.OutputTemplate,
	}

	if opts.Format != "" {
		args = append(args, "-f", opts.Format)
	}

	for _, ea := range opts.ExtractorArgs {
		args = append(args, "--extractor-args", ea)
	}

	switch opts.Postprocess {
	case domain.PostprocessConvertVideo:
		args = append(args, "--recode-video", domain.TargetVideoContainer)
	case domain.PostprocessExtractAudio:
		args = append(args,
			"-x",
			"--audio-format", domain.TargetAudioCodec,
			"--audio-quality", domain.TargetAudioQuality)
	}

	return append(args, url)
}

// parseProgressLine extracts a downloading event from one output line.
func parseProgressLine(line string, started time.Time) (domain.ProgressEvent, bool) {
	m := progressPattern.FindStringSubmatch(line)
	if m == nil {
		return domain.ProgressEvent{}, false
	}
	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return domain.ProgressEvent{}, false
	}
	return domain.ProgressEvent{
		Status:     domain.ProgressDownloading,
		Percent:    percent,
		HasPercent: true,
		Elapsed:    time.Since(started),
	}, true
}

// emitProgress forwards an event without blocking; when the consumer is
// behind, the event is dropped rather than stalling the fetch.
func emitProgress(ch chan<- domain.ProgressEvent, ev domain.ProgressEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}

// firstLine returns the first non-empty line of command output, for
// compact error messages.
func firstLine(output []byte) string {
	for _, line := range strings.Split(string(output), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
