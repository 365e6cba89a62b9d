package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/fetchbot/internal/domain"
	"github.com/yourusername/fetchbot/pkg/logger"
)

// mockEngine implements domain.FetchEngine. fetchFn may create the
// artifact file to simulate the external tool's output.
type mockEngine struct {
	mu         sync.Mutex
	probeRes   *domain.ProbeResult
	probeErr   error
	fetchErr   error
	fetchFn    func(opts domain.FetchOptions) error
	fetchCalls int
	lastOpts   domain.FetchOptions
}

func (m *mockEngine) Probe(ctx context.Context, url string) (*domain.ProbeResult, error) {
	if m.probeErr != nil {
		return nil, m.probeErr
	}
	return m.probeRes, nil
}

func (m *mockEngine) Fetch(ctx context.Context, url string, opts domain.FetchOptions) error {
	m.mu.Lock()
	m.fetchCalls++
	m.lastOpts = opts
	m.mu.Unlock()
	if opts.Progress != nil {
		close(opts.Progress)
	}
	if m.fetchFn != nil {
		return m.fetchFn(opts)
	}
	return m.fetchErr
}

// mockHistory records terminal requests in memory.
type mockHistory struct {
	mu       sync.Mutex
	requests []*domain.Request
}

func (m *mockHistory) Record(req *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return nil
}

func (m *mockHistory) Recent(limit int) ([]*domain.Request, error) { return m.requests, nil }
func (m *mockHistory) Stats() (*domain.HistoryStats, error)        { return &domain.HistoryStats{}, nil }

type orchestratorFixture struct {
	orch      *Orchestrator
	engine    *mockEngine
	transport *recordingTransport
	sessions  *MemorySessionStore
	history   *mockHistory
	dir       string
}

func newFixture(t *testing.T, engine *mockEngine) *orchestratorFixture {
	t.Helper()
	dir := t.TempDir()
	transport := &recordingTransport{}
	sessions := NewMemorySessionStore()
	history := &mockHistory{}
	cfg := &domain.DownloadConfig{
		Dir:          dir,
		MaxFileSize:  50 * 1024 * 1024,
		ProbeTimeout: 5 * time.Second,
		FetchTimeout: 5 * time.Second,
	}
	orch := NewOrchestrator(engine, transport, sessions, history, cfg, logger.NewDefault())
	return &orchestratorFixture{orch: orch, engine: engine, transport: transport, sessions: sessions, history: history, dir: dir}
}

func writeArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("media"), 0644))
	return path
}

func testProbe() *domain.ProbeResult {
	return &domain.ProbeResult{
		ID:       "abc123",
		Title:    "Test Clip",
		Ext:      "mp4",
		Duration: 90,
		Size:     4 * 1024 * 1024,
	}
}

func TestHandleURL_Success_PresentsChoice(t *testing.T) {
	f := newFixture(t, &mockEngine{probeRes: testProbe()})

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")

	require.Len(t, f.transport.sent, 1)
	assert.Equal(t, msgAnalyzing, f.transport.sent[0])

	edits := f.transport.editTexts()
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0], "choice:")
	assert.Contains(t, edits[0], "Test Clip")
	assert.Contains(t, edits[0], "1:30")
	assert.Contains(t, edits[0], "4.0MB")
	assert.Contains(t, edits[0], "12.0s")

	pending, ok := f.sessions.Take(7)
	require.True(t, ok)
	assert.Equal(t, "https://youtu.be/abc123", pending.Request.URL)
	assert.Equal(t, domain.StateAwaitingChoice, pending.Request.State)
}

func TestHandleURL_ApproximateSizeIsMarked(t *testing.T) {
	probe := testProbe()
	probe.SizeApprox = true
	f := newFixture(t, &mockEngine{probeRes: probe})

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")

	edits := f.transport.editTexts()
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0], "~4.0MB")
}

func TestHandleURL_ProbeFailure_ReportsAndStoresNothing(t *testing.T) {
	f := newFixture(t, &mockEngine{probeErr: errors.New("connection refused")})

	f.orch.HandleURL(context.Background(), 7, "https://example.org/broken")

	edits := f.transport.editTexts()
	require.Len(t, edits, 1)
	assert.Equal(t, msgAnalyzeFailed, edits[0])

	_, ok := f.sessions.Take(7)
	assert.False(t, ok)

	require.Len(t, f.history.requests, 1)
	assert.Equal(t, domain.StateFailed, f.history.requests[0].State)
	assert.Equal(t, "analysis", f.history.requests[0].FailureClass)
}

func TestHandleChoice_NoPendingURL_ReportsExpired(t *testing.T) {
	f := newFixture(t, &mockEngine{})

	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)

	edits := f.transport.editTexts()
	require.Len(t, edits, 1)
	assert.Equal(t, msgLinkExpired, edits[0])
	assert.Zero(t, f.engine.fetchCalls, "no download may be attempted")
}

func TestHandleChoice_Video_DeliversAndCleansUp(t *testing.T) {
	engine := &mockEngine{probeRes: testProbe()}
	f := newFixture(t, engine)
	engine.fetchFn = func(opts domain.FetchOptions) error {
		writeArtifact(t, f.dir, "abc123.mp4")
		return nil
	}

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)

	require.Len(t, f.transport.videos, 1)
	assert.Contains(t, f.transport.videos[0], "Test Clip.mp4|Test Clip")
	assert.Empty(t, f.transport.audios)

	assert.NoFileExists(t, filepath.Join(f.dir, "abc123.mp4"))
	assert.NoFileExists(t, filepath.Join(f.dir, "Test Clip.mp4"))
	assert.Contains(t, f.transport.deleted, 10)

	assert.Equal(t, "bestvideo[height<=720]+bestaudio/best[height<=720]", engine.lastOpts.Format)
	assert.Equal(t, domain.PostprocessConvertVideo, engine.lastOpts.Postprocess)

	terminal := f.history.requests[len(f.history.requests)-1]
	assert.Equal(t, domain.StateCleanedUp, terminal.State)
}

func TestHandleChoice_Audio_UsesDefaultProfileAndTitle(t *testing.T) {
	engine := &mockEngine{probeRes: testProbe()}
	f := newFixture(t, engine)
	engine.fetchFn = func(opts domain.FetchOptions) error {
		writeArtifact(t, f.dir, "abc123.mp3")
		return nil
	}

	f.orch.HandleURL(context.Background(), 7, "https://example.org/media/42")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityAudio)

	require.Len(t, f.transport.audios, 1)
	assert.Contains(t, f.transport.audios[0], "Test Clip.mp3|Test Clip")

	assert.Equal(t, "bestaudio/best", engine.lastOpts.Format)
	assert.Equal(t, domain.PostprocessExtractAudio, engine.lastOpts.Postprocess)
	assert.NoFileExists(t, filepath.Join(f.dir, "abc123.mp3"))
	assert.NoFileExists(t, filepath.Join(f.dir, "Test Clip.mp3"))
}

func TestHandleChoice_AlternateExtensionIsResolved(t *testing.T) {
	engine := &mockEngine{probeRes: testProbe()}
	f := newFixture(t, engine)
	engine.fetchFn = func(opts domain.FetchOptions) error {
		// Post-processing renamed the output: probe said mp4.
		writeArtifact(t, f.dir, "abc123.webm")
		return nil
	}

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)

	require.Len(t, f.transport.videos, 1)
	assert.Contains(t, f.transport.videos[0], "Test Clip.webm")
	assert.NoFileExists(t, filepath.Join(f.dir, "abc123.webm"))
	assert.NoFileExists(t, filepath.Join(f.dir, "Test Clip.webm"))
}

func TestHandleChoice_MissingOutput_FailsAsFetchFailure(t *testing.T) {
	engine := &mockEngine{probeRes: testProbe()}
	f := newFixture(t, engine)
	// Fetch "succeeds" but leaves no file at all.

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)

	assert.Empty(t, f.transport.videos)
	edits := f.transport.editTexts()
	assert.Equal(t, msgFailed, edits[len(edits)-1])

	terminal := f.history.requests[len(f.history.requests)-1]
	assert.Equal(t, domain.StateFailed, terminal.State)
	assert.Equal(t, "missing_output", terminal.FailureClass)
}

func TestHandleChoice_FetchFailure_Reported(t *testing.T) {
	engine := &mockEngine{probeRes: testProbe(), fetchErr: errors.New("extractor blew up")}
	f := newFixture(t, engine)

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)

	edits := f.transport.editTexts()
	assert.Equal(t, msgFailed, edits[len(edits)-1])

	terminal := f.history.requests[len(f.history.requests)-1]
	assert.Equal(t, "fetch", terminal.FailureClass)
}

func TestHandleChoice_OversizedArtifact_RejectedAndRemoved(t *testing.T) {
	engine := &mockEngine{probeRes: testProbe()}
	f := newFixture(t, engine)
	f.orch.cfg.MaxFileSize = 2 // bytes
	engine.fetchFn = func(opts domain.FetchOptions) error {
		writeArtifact(t, f.dir, "abc123.mp4")
		return nil
	}

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)

	assert.Empty(t, f.transport.videos)
	edits := f.transport.editTexts()
	assert.Equal(t, msgTooLarge, edits[len(edits)-1])
	assert.NoFileExists(t, filepath.Join(f.dir, "abc123.mp4"))
	assert.NoFileExists(t, filepath.Join(f.dir, "Test Clip.mp4"))

	terminal := f.history.requests[len(f.history.requests)-1]
	assert.Equal(t, "too_large", terminal.FailureClass)
}

func TestHandleChoice_DeliveryFailure_StillCleansUp(t *testing.T) {
	engine := &mockEngine{probeRes: testProbe()}
	f := newFixture(t, engine)
	f.transport.videoErr = errors.New("chat blocked the bot")
	engine.fetchFn = func(opts domain.FetchOptions) error {
		writeArtifact(t, f.dir, "abc123.mp4")
		return nil
	}

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)

	assert.NoFileExists(t, filepath.Join(f.dir, "abc123.mp4"), "artifact removed on delivery failure")
	assert.NoFileExists(t, filepath.Join(f.dir, "Test Clip.mp4"), "artifact removed on delivery failure")

	terminal := f.history.requests[len(f.history.requests)-1]
	assert.Equal(t, domain.StateFailed, terminal.State)
	assert.Equal(t, "delivery", terminal.FailureClass)
}

func TestHandleChoice_ReservedTitleChars_StrippedFromFilename(t *testing.T) {
	probe := testProbe()
	probe.Title = "Bad: <Title>?"
	engine := &mockEngine{probeRes: probe}
	f := newFixture(t, engine)
	engine.fetchFn = func(opts domain.FetchOptions) error {
		writeArtifact(t, f.dir, "abc123.mp4")
		return nil
	}

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)

	require.Len(t, f.transport.videos, 1)
	assert.Contains(t, f.transport.videos[0], "Bad Title.mp4")
	assert.NoFileExists(t, filepath.Join(f.dir, "Bad Title.mp4"))
}

func TestHandleChoice_TitleCollision_KeepsArtifactsDisjoint(t *testing.T) {
	engine := &mockEngine{probeRes: testProbe()}
	f := newFixture(t, engine)
	engine.fetchFn = func(opts domain.FetchOptions) error {
		writeArtifact(t, f.dir, "abc123.mp4")
		return nil
	}

	// Another request with the same title already holds the plain name.
	other := writeArtifact(t, f.dir, "Test Clip.mp4")

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)

	require.Len(t, f.transport.videos, 1)
	assert.Contains(t, f.transport.videos[0], "Test Clip-abc123.mp4")
	assert.FileExists(t, other, "the other request's artifact is untouched")
	assert.NoFileExists(t, filepath.Join(f.dir, "Test Clip-abc123.mp4"))
}

func TestHandleChoice_SecondChoiceForSamePreviewExpires(t *testing.T) {
	engine := &mockEngine{probeRes: testProbe()}
	f := newFixture(t, engine)
	engine.fetchFn = func(opts domain.FetchOptions) error {
		writeArtifact(t, f.dir, "abc123.mp4")
		return nil
	}

	f.orch.HandleURL(context.Background(), 7, "https://youtu.be/abc123")
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityVideo)
	f.orch.HandleChoice(context.Background(), 7, 10, domain.ModalityAudio)

	assert.Equal(t, 1, f.engine.fetchCalls)
	edits := f.transport.editTexts()
	assert.Equal(t, msgLinkExpired, edits[len(edits)-1])
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, msgAnalyzeFailed, userMessage(domain.ErrAnalysisFailed))
	assert.Equal(t, msgLinkExpired, userMessage(domain.ErrSessionExpired))
	assert.Equal(t, msgTooLarge, userMessage(domain.ErrArtifactTooLarge))
	assert.Equal(t, msgFailed, userMessage(domain.ErrFetchFailed))
	assert.Equal(t, msgFailed, userMessage(domain.ErrOutputMissing))
	assert.Equal(t, msgFailed, userMessage(errors.New("boom")))
}
