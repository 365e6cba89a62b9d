package domain

import (
	"time"

	"github.com/google/uuid"
)

// Modality is the output type chosen by the user.
type Modality string

const (
	ModalityVideo Modality = "video"
	ModalityAudio Modality = "audio"
)

// ParseModality parses a callback payload into a Modality.
func ParseModality(s string) (Modality, bool) {
	switch Modality(s) {
	case ModalityVideo, ModalityAudio:
		return Modality(s), true
	}
	return "", false
}

// State represents where a request currently is in the pipeline.
type State string

const (
	StateAnalyzing      State = "analyzing"
	StateAwaitingChoice State = "awaiting_choice"
	StateDownloading    State = "downloading"
	StateDelivering     State = "delivering"
	StateCleanedUp      State = "cleaned_up"
	StateFailed         State = "failed"
)

// Request is one user-submitted URL moving through the pipeline. It is
// created when the URL arrives, gains a modality when the user answers the
// preview, and ends in StateCleanedUp or StateFailed. Terminal requests are
// persisted as history.
type Request struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	ChatID       int64      `json:"chat_id" gorm:"index"`
	URL          string     `json:"url" gorm:"not null"`
	Modality     Modality   `json:"modality,omitempty"`
	State        State      `json:"state" gorm:"index"`
	Title        string     `json:"title,omitempty"`
	FileSize     int64      `json:"file_size,omitempty"`
	FailureClass string     `json:"failure_class,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewRequest creates a request in the analyzing state.
func NewRequest(chatID int64, url string) *Request {
	return &Request{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		URL:       url,
		State:     StateAnalyzing,
		CreatedAt: time.Now(),
	}
}

// MarkAwaitingChoice records a successful probe and waits for the user.
func (r *Request) MarkAwaitingChoice(title string) {
	r.State = StateAwaitingChoice
	r.Title = title
}

// MarkDownloading attaches the chosen modality and starts the fetch.
func (r *Request) MarkDownloading(m Modality) {
	r.State = StateDownloading
	r.Modality = m
}

// MarkDelivering records that the artifact was resolved on disk.
func (r *Request) MarkDelivering(fileSize int64) {
	r.State = StateDelivering
	r.FileSize = fileSize
}

// MarkCleanedUp terminates a successful request.
func (r *Request) MarkCleanedUp() {
	r.State = StateCleanedUp
	now := time.Now()
	r.CompletedAt = &now
}

// MarkFailed terminates the request with a failure class from the error
// taxonomy.
func (r *Request) MarkFailed(class string) {
	r.State = StateFailed
	r.FailureClass = class
	now := time.Now()
	r.CompletedAt = &now
}

// IsTerminal checks if the request reached a terminal state.
func (r *Request) IsTerminal() bool {
	return r.State == StateCleanedUp || r.State == StateFailed
}

// Pending is the per-session value held between the preview and the user's
// modality choice.
type Pending struct {
	Request *Request
	Probe   *ProbeResult
}
