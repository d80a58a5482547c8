// Package alerts delivers wager notifications over Telegram.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/models"
)

// Sender is the part of the bot API the notifier needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts placed and settled wagers to a single chat.
type TelegramNotifier struct {
	bot            Sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	logger         *logrus.Entry
}

// NewTelegramNotifier connects to the bot API with the given token.
func NewTelegramNotifier(token string, chatID int64, log *logrus.Logger) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return NewTelegramNotifierWithSender(bot, chatID, log), nil
}

// NewTelegramNotifierWithSender builds a notifier around an existing sender.
func NewTelegramNotifierWithSender(bot Sender, chatID int64, log *logrus.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     3,
		retryDelayBase: time.Second,
		logger:         logger.OrDiscard(log).WithField("component", "telegram"),
	}
}

// NotifyWager announces a newly placed wager.
func (n *TelegramNotifier) NotifyWager(ctx context.Context, w models.Wager) error {
	return n.sendMarkdownV2(ctx, FormatWager(w))
}

// NotifySettlement announces a settled wager and the bankroll after it.
func (n *TelegramNotifier) NotifySettlement(ctx context.Context, w models.Wager, bankroll float64) error {
	return n.sendMarkdownV2(ctx, FormatSettlement(w, bankroll))
}

// NotifyText sends a preformatted plain text report such as a scan summary.
func (n *TelegramNotifier) NotifyText(ctx context.Context, text string) error {
	return n.sendMarkdownV2(ctx, "```\n"+escapeCode(text)+"\n```")
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (n *TelegramNotifier) sendMarkdownV2(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < n.maxRetries; i++ {
		_, err := n.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		n.logger.WithError(err).WithField("attempt", i+1).Warn("Telegram send failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.retryDelayBase * time.Duration(i+1)):
		}
	}
	return fmt.Errorf("failed after %d retries: %w", n.maxRetries, lastErr)
}

// FormatWager renders a placed wager as a MarkdownV2 message.
func FormatWager(w models.Wager) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📌 *New %s wager* \\(Tier %s\\)\n", escapeMarkdownV2(string(w.Sport)), escapeMarkdownV2(string(w.Tier)))
	fmt.Fprintf(&b, "📅 %s: %s @ %s\n", escapeMarkdownV2(w.Date), escapeMarkdownV2(w.AwayTeam), escapeMarkdownV2(w.HomeTeam))
	fmt.Fprintf(&b, "🎯 Pick: *%s* at %s\n", escapeMarkdownV2(w.Pick), escapeMarkdownV2(fmt.Sprintf("%.2f", w.Odds)))
	fmt.Fprintf(&b, "💵 Stake: %s\n", escapeMarkdownV2(fmt.Sprintf("$%.2f", w.Stake)))
	fmt.Fprintf(&b, "📊 Form advantage: %s\n", escapeMarkdownV2(fmt.Sprintf("%+d", w.FormAdvantage)))
	if len(w.Adjustments) > 0 {
		fmt.Fprintf(&b, "⚙️ %s\n", escapeMarkdownV2(strings.Join(w.Adjustments, ", ")))
	}
	if w.Reason != "" {
		fmt.Fprintf(&b, "_%s_\n", escapeMarkdownV2(w.Reason))
	}
	return b.String()
}

// FormatSettlement renders a settled wager as a MarkdownV2 message.
func FormatSettlement(w models.Wager, bankroll float64) string {
	icon := "✅"
	outcome := "WON"
	if w.Result == models.WagerResultLost {
		icon = "❌"
		outcome = "LOST"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s* %s\n", icon, outcome, escapeMarkdownV2(fmt.Sprintf("%s %s over %s", w.Date, w.Pick, opponent(w))))
	fmt.Fprintf(&b, "Profit: %s\n", escapeMarkdownV2(fmt.Sprintf("%+.2f", w.Profit)))
	fmt.Fprintf(&b, "Bankroll: %s\n", escapeMarkdownV2(fmt.Sprintf("$%.2f", bankroll)))
	return b.String()
}

func opponent(w models.Wager) string {
	if w.Pick == w.HomeTeam {
		return w.AwayTeam
	}
	return w.HomeTeam
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// escapeCode escapes text placed inside a pre block.
func escapeCode(text string) string {
	r := strings.NewReplacer("\\", "\\\\", "`", "\\`")
	return r.Replace(text)
}
