package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/fetchbot/internal/domain"
	"github.com/yourusername/fetchbot/pkg/sanitize"
)

// artifactExtensions is the fallback search order when the expected
// output path does not exist. The engine's post-processing may rewrite
// the extension (mp4 conversion, mp3 extraction), so the guarded check
// scans container and codec variants sharing the same base name.
var artifactExtensions = []string{".mp4", ".mkv", ".webm", ".m4a", ".mp3"}

// Orchestrator drives one request through the pipeline: probe, preview,
// modality choice, fetch, artifact resolution, delivery and cleanup. Each
// inbound event runs as its own task; the only state shared across
// sessions is the session store.
type Orchestrator struct {
	engine    domain.FetchEngine
	transport domain.ChatTransport
	sessions  domain.SessionStore
	history   domain.HistoryRepository // optional
	cfg       *domain.DownloadConfig
	log       *zap.Logger
}

// NewOrchestrator creates an orchestrator. history may be nil, in which
// case terminal requests are not persisted.
func NewOrchestrator(
	engine domain.FetchEngine,
	transport domain.ChatTransport,
	sessions domain.SessionStore,
	history domain.HistoryRepository,
	cfg *domain.DownloadConfig,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		engine:    engine,
		transport: transport,
		sessions:  sessions,
		history:   history,
		cfg:       cfg,
		log:       log,
	}
}

// HandleURL processes an inbound URL: it probes the content and, on
// success, stores the pending request and presents the modality choice.
// Probe failures are reported immediately and never retried.
func (o *Orchestrator) HandleURL(ctx context.Context, chatID int64, url string) {
	req := domain.NewRequest(chatID, url)
	profile := domain.ResolveProfile(url)
	o.log.Info("analyzing url",
		zap.String("request_id", req.ID),
		zap.Int64("chat_id", chatID),
		zap.String("url", url),
		zap.String("profile_host", profile.Host))

	statusID, err := o.transport.SendText(chatID, msgAnalyzing)
	if err != nil {
		o.log.Error("failed to send status message", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, o.cfg.ProbeTimeout)
	defer cancel()

	probe, err := o.engine.Probe(probeCtx, url)
	if err != nil {
		probesTotal.WithLabelValues("failure").Inc()
		req.MarkFailed(domain.FailureClass(fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)))
		o.record(req)
		o.log.Error("url analysis failed",
			zap.String("request_id", req.ID),
			zap.String("url", url),
			zap.Error(err))
		o.editBestEffort(chatID, statusID, msgAnalyzeFailed)
		return
	}
	probesTotal.WithLabelValues("success").Inc()

	req.MarkAwaitingChoice(probe.Title)
	o.sessions.Put(chatID, domain.Pending{Request: req, Probe: probe})

	if err := o.transport.PresentChoice(chatID, statusID, previewText(probe)); err != nil {
		o.log.Error("failed to present choice",
			zap.String("request_id", req.ID),
			zap.Error(err))
	}
}

// HandleChoice processes the user's modality selection. The session must
// still hold a pending URL, otherwise the user is told to resend the
// link. All pipeline failures are collapsed into one localized message;
// detail only reaches the log.
func (o *Orchestrator) HandleChoice(ctx context.Context, chatID int64, messageID int, modality domain.Modality) {
	pending, ok := o.sessions.Take(chatID)
	if !ok {
		o.log.Warn("choice without pending url", zap.Int64("chat_id", chatID))
		o.editBestEffort(chatID, messageID, msgLinkExpired)
		return
	}

	req := pending.Request
	req.MarkDownloading(modality)
	start := time.Now()

	err := o.runDownload(ctx, req, pending.Probe, messageID)
	if err != nil {
		req.MarkFailed(domain.FailureClass(err))
		downloadsTotal.WithLabelValues(string(modality), "failure").Inc()
		o.log.Error("download pipeline failed",
			zap.String("request_id", req.ID),
			zap.String("url", req.URL),
			zap.String("modality", string(modality)),
			zap.String("failure_class", req.FailureClass),
			zap.Error(err))
		o.editBestEffort(chatID, messageID, userMessage(err))
	} else {
		req.MarkCleanedUp()
		downloadsTotal.WithLabelValues(string(modality), "success").Inc()
		downloadDuration.Observe(time.Since(start).Seconds())
		o.log.Info("download completed",
			zap.String("request_id", req.ID),
			zap.String("url", req.URL),
			zap.String("modality", string(modality)),
			zap.Int64("file_size", req.FileSize),
			zap.Duration("took", time.Since(start)))
	}
	o.record(req)
}

// runDownload runs fetch, artifact resolution, size check, delivery and
// cleanup. Once an artifact exists on disk it is removed on every exit
// path, including delivery failures.
func (o *Orchestrator) runDownload(ctx context.Context, req *domain.Request, probe *domain.ProbeResult, messageID int) error {
	profile := domain.ResolveProfile(req.URL)

	o.editBestEffort(req.ChatID, messageID, downloadingHeader(req.Modality))

	// Buffered so a stalled render can never back-pressure the engine.
	events := make(chan domain.ProgressEvent, 16)
	tracker := NewProgressTracker(o.transport, req.ChatID, messageID, downloadingHeader(req.Modality), o.log)
	trackerDone := make(chan struct{})
	go func() {
		tracker.Run(events)
		close(trackerDone)
	}()

	opts := domain.FetchOptions{
		OutputTemplate: filepath.Join(o.cfg.Dir, "%(id)s.%(ext)s"),
		Format:         profile.FetchFormat(req.Modality),
		ExtractorArgs:  profile.ExtractorArgs,
		Postprocess:    domain.PostprocessFor(req.Modality),
		Progress:       events,
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()

	err := o.engine.Fetch(fetchCtx, req.URL, opts)
	<-trackerDone
	tracker.Wait()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	path, err := o.resolveArtifact(probe)
	if err != nil {
		return err
	}
	path = o.renameForDelivery(req, probe, path)
	defer o.removeArtifact(req, path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", domain.ErrFetchFailed, path, err)
	}
	if info.Size() > o.cfg.MaxFileSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrArtifactTooLarge, info.Size(), o.cfg.MaxFileSize)
	}
	req.MarkDelivering(info.Size())
	artifactBytes.Observe(float64(info.Size()))

	if req.Modality == domain.ModalityAudio {
		err = o.transport.SendAudio(req.ChatID, path, probe.Title)
	} else {
		err = o.transport.SendVideo(req.ChatID, path, probe.Title)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	// The progress message is transient; removing it is best-effort.
	if err := o.transport.DeleteMessage(req.ChatID, messageID); err != nil {
		o.log.Warn("failed to delete progress message",
			zap.String("request_id", req.ID),
			zap.Error(err))
	}
	return nil
}

// resolveArtifact locates the downloaded file. The expected path is the
// content id plus its native extension; when post-processing renamed the
// output, the fixed set of alternate extensions is searched.
func (o *Orchestrator) resolveArtifact(probe *domain.ProbeResult) (string, error) {
	base := filepath.Join(o.cfg.Dir, probe.ID)
	expected := base + "." + probe.Ext
	if fileExists(expected) {
		return expected, nil
	}
	for _, ext := range artifactExtensions {
		if candidate := base + ext; fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrOutputMissing, expected)
}

// renameForDelivery gives the artifact a title-derived filename so the
// recipient sees the content title instead of a site id. A failed rename
// keeps the id-based path; delivery proceeds either way.
func (o *Orchestrator) renameForDelivery(req *domain.Request, probe *domain.ProbeResult, path string) string {
	name := sanitize.Filename(probe.Title)
	ext := filepath.Ext(path)
	target := filepath.Join(o.cfg.Dir, name+ext)
	if target == path {
		return path
	}
	// A concurrent request for the same title may already hold the
	// target name; the content id keeps the paths disjoint.
	if fileExists(target) {
		target = filepath.Join(o.cfg.Dir, name+"-"+probe.ID+ext)
	}
	if err := os.Rename(path, target); err != nil {
		o.log.Warn("failed to rename artifact",
			zap.String("request_id", req.ID),
			zap.String("path", path),
			zap.Error(err))
		return path
	}
	return target
}

func (o *Orchestrator) removeArtifact(req *domain.Request, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		o.log.Warn("artifact cleanup failed",
			zap.String("request_id", req.ID),
			zap.String("path", path),
			zap.Error(err))
	}
}

func (o *Orchestrator) record(req *domain.Request) {
	if o.history == nil {
		return
	}
	if err := o.history.Record(req); err != nil {
		o.log.Warn("failed to record request history",
			zap.String("request_id", req.ID),
			zap.Error(err))
	}
}

func (o *Orchestrator) editBestEffort(chatID int64, messageID int, text string) {
	if err := o.transport.EditText(chatID, messageID, text); err != nil {
		o.log.Warn("failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
