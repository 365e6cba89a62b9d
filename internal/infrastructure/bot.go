package infrastructure

import (
	"context"
	"strings"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yourusername/fetchbot/internal/app"
	"github.com/yourusername/fetchbot/internal/domain"
)

const welcomeText = `🎥 Welcome to the media download bot!

📤 How to use:
1️⃣ Send a video or audio link.
2️⃣ Choose the download type (🎥 video or 🎧 audio).
3️⃣ Wait and the file will be sent to you.

🌍 Supported sites:
🔹 YouTube 🔹 Facebook 🔹 Twitter
🔹 TikTok 🔹 Instagram 🔹 SoundCloud
🔹 and many more!`

// Bot is the inbound side of the chat transport: it long-polls for
// updates and dispatches each one as an independent task, so one
// session's long download never blocks another session's events.
type Bot struct {
	api          *tgbotapi.BotAPI
	orchestrator *app.Orchestrator
	pollTimeout  int
	log          *zap.Logger
	running      atomic.Bool
}

// NewBot creates the update loop around an authorized bot client.
func NewBot(api *tgbotapi.BotAPI, orchestrator *app.Orchestrator, pollTimeout int, log *zap.Logger) *Bot {
	return &Bot{
		api:          api,
		orchestrator: orchestrator,
		pollTimeout:  pollTimeout,
		log:          log,
	}
}

// IsRunning reports whether the update loop is active.
func (b *Bot) IsRunning() bool {
	return b.running.Load()
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.running.Store(true)
	defer b.running.Store(false)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	b.log.Info("bot polling for updates", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		chatID := update.Message.Chat.ID
		url := strings.TrimSpace(update.Message.Text)
		go b.orchestrator.HandleURL(ctx, chatID, url)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	if msg.Command() != "start" {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, welcomeText)); err != nil {
		b.log.Warn("failed to send welcome", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Acknowledge the button press so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("failed to answer callback", zap.Error(err))
	}

	if cb.Message == nil {
		return
	}

	modality, ok := domain.ParseModality(cb.Data)
	if !ok {
		b.log.Warn("unknown callback payload", zap.String("data", cb.Data))
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	go b.orchestrator.HandleChoice(ctx, chatID, messageID, modality)
}
