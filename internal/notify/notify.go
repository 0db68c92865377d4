// internal/notify/notify.go
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"card-assistant/internal/domain"
)

// LogSurface writes presentation requests to the log. Default surface
// when no external channel is configured.
type LogSurface struct{}

func (LogSurface) ShowRecommendation(ctx context.Context, rec *domain.Recommendation) {
	if rec == nil {
		slog.Info("surface: checkout detected, add cards to get recommendations")
		return
	}
	slog.Info("surface: best card", "card", rec.Card.Name, "reasoning", rec.Reasoning)
}

func (LogSurface) Hide(ctx context.Context) {
	slog.Debug("surface: hidden")
}

// TelegramSurface pushes recommendations to a Telegram chat. Sends are
// fire-and-forget: a delivery failure is logged and dropped, the
// pipeline never waits on it.
type TelegramSurface struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramSurface(token string, chatID int64) (*TelegramSurface, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramSurface{bot: bot, chatID: chatID}, nil
}

func (s *TelegramSurface) ShowRecommendation(ctx context.Context, rec *domain.Recommendation) {
	var text string
	if rec == nil {
		text = "💳 *Card Assistant*\n\nCheckout detected, but no card matches. Add your cards to get recommendations."
	} else {
		text = fmt.Sprintf("💳 *Best Card: %s*\n%s\n💰 Earn $%.2f cashback on $%.2f at %s",
			rec.Card.Name, rec.Reasoning, rec.RewardAmount, rec.EstimatedAmount, rec.MerchantName)
	}

	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ParseMode = "Markdown"
	go func() {
		if _, err := s.bot.Send(msg); err != nil {
			slog.Warn("telegram send failed", "error", err)
		}
	}()
}

func (s *TelegramSurface) Hide(ctx context.Context) {
	// Nothing to retract on a chat surface.
}
