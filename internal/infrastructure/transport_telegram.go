package infrastructure

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yourusername/fetchbot/internal/domain"
)

// Callback payloads for the modality choice buttons. They double as the
// wire form of domain.Modality.
const (
	callbackVideo = string(domain.ModalityVideo)
	callbackAudio = string(domain.ModalityAudio)
)

// TelegramTransport implements domain.ChatTransport over the Bot API.
type TelegramTransport struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramTransport wraps an authorized bot client.
func NewTelegramTransport(bot *tgbotapi.BotAPI) *TelegramTransport {
	return &TelegramTransport{bot: bot}
}

// SendText sends a plain text message and returns its message id.
func (t *TelegramTransport) SendText(chatID int64, text string) (int, error) {
	sent, err := t.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditText replaces the text of an existing message.
func (t *TelegramTransport) EditText(chatID int64, messageID int, text string) error {
	_, err := t.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

// PresentChoice edits a message to show the preview text with the
// video/audio inline keyboard.
func (t *TelegramTransport) PresentChoice(chatID int64, messageID int, text string) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎥 Video", callbackVideo),
			tgbotapi.NewInlineKeyboardButtonData("🎧 Audio", callbackAudio),
		),
	)
	_, err := t.bot.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard))
	return err
}

// SendVideo delivers a local video file with a caption.
func (t *TelegramTransport) SendVideo(chatID int64, path, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = "🎬 " + caption
	video.SupportsStreaming = true
	_, err := t.bot.Send(video)
	return err
}

// SendAudio delivers a local audio file with a title.
func (t *TelegramTransport) SendAudio(chatID int64, path, title string) error {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
	audio.Title = title
	_, err := t.bot.Send(audio)
	return err
}

// DeleteMessage removes a previously sent message.
func (t *TelegramTransport) DeleteMessage(chatID int64, messageID int) error {
	_, err := t.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}
