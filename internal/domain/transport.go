package domain

// ChatTransport is the chat system the service talks through. Message
// identifiers are transport-scoped; the orchestrator only threads them
// back into edits and deletes.
type ChatTransport interface {
	// SendText sends a plain text message and returns its identifier.
	SendText(chatID int64, text string) (int, error)

	// EditText replaces the text of an existing message.
	EditText(chatID int64, messageID int, text string) error

	// PresentChoice replaces an existing message with text plus the
	// video/audio selection controls.
	PresentChoice(chatID int64, messageID int, text string) error

	// SendVideo delivers a local video file with a caption.
	SendVideo(chatID int64, path, caption string) error

	// SendAudio delivers a local audio file with a title.
	SendAudio(chatID int64, path, title string) error

	// DeleteMessage removes a previously sent message.
	DeleteMessage(chatID int64, messageID int) error
}
