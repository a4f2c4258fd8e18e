package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
	"github.com/DepSpiel/telegram-pidrgpt/internal/requestid"
	"github.com/DepSpiel/telegram-pidrgpt/internal/resilience/circuitbreaker"
	"github.com/DepSpiel/telegram-pidrgpt/internal/resilience/retry"
	pkgconfig "github.com/DepSpiel/telegram-pidrgpt/pkg/config"
)

// Telegram allows roughly one message per second per chat and thirty per
// second across all chats. One send per second with a small burst keeps the
// bot inside both quotas even when several chats are configured.
const (
	telegramSendsPerSecond = 1.0
	telegramSendBurst      = 3
)

const (
	defaultTelegramParseMode   = tgbotapi.ModeMarkdown
	defaultTelegramSendTimeout = 30 * time.Second
)

// TelegramConfig holds configuration for the Telegram delivery channel.
type TelegramConfig struct {
	// Enabled controls whether digests are delivered to Telegram.
	Enabled bool

	// BotToken is the Telegram Bot API token from @BotFather.
	BotToken string

	// ChatIDs lists delivery targets: numeric chat IDs or @channel usernames.
	ChatIDs []string

	// ParseMode is the Telegram formatting mode for captions.
	ParseMode string

	// SendTimeout bounds a single Bot API exchange.
	SendTimeout time.Duration

	// APIEndpoint overrides the Bot API endpoint. Used in tests.
	APIEndpoint string
}

// LoadTelegramConfig loads Telegram channel configuration from environment
// variables, falling back to defaults for anything unset.
//
// Environment variables:
//   - TELEGRAM_ENABLED: Whether to deliver digests (default: true)
//   - TELEGRAM_BOT_TOKEN: Bot API token (required when enabled)
//   - TELEGRAM_CHAT_IDS: Comma-separated chat IDs or @channel usernames
//   - TELEGRAM_PARSE_MODE: Caption formatting mode (default: Markdown)
//   - TELEGRAM_SEND_TIMEOUT: Single send timeout (default: 30s)
func LoadTelegramConfig() *TelegramConfig {
	return &TelegramConfig{
		Enabled:     pkgconfig.GetEnvBool("TELEGRAM_ENABLED", true),
		BotToken:    pkgconfig.GetEnvString("TELEGRAM_BOT_TOKEN", ""),
		ChatIDs:     pkgconfig.GetEnvStringList("TELEGRAM_CHAT_IDS", nil),
		ParseMode:   pkgconfig.GetEnvString("TELEGRAM_PARSE_MODE", defaultTelegramParseMode),
		SendTimeout: pkgconfig.GetEnvDuration("TELEGRAM_SEND_TIMEOUT", defaultTelegramSendTimeout),
		APIEndpoint: pkgconfig.GetEnvString("TELEGRAM_API_ENDPOINT", tgbotapi.APIEndpoint),
	}
}

// Validate checks the configuration for correctness.
// A disabled configuration is always valid.
func (c *TelegramConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.BotToken == "" {
		return fmt.Errorf("bot token cannot be empty")
	}

	if len(c.ChatIDs) == 0 {
		return fmt.Errorf("at least one chat ID is required")
	}
	for _, chatID := range c.ChatIDs {
		if _, _, err := parseChatTarget(chatID); err != nil {
			return err
		}
	}

	switch c.ParseMode {
	case "", tgbotapi.ModeMarkdown, tgbotapi.ModeMarkdownV2, tgbotapi.ModeHTML:
	default:
		return fmt.Errorf("unsupported parse mode %q", c.ParseMode)
	}

	if err := pkgconfig.ValidateDurationRange(c.SendTimeout, time.Second, 2*time.Minute); err != nil {
		return fmt.Errorf("invalid send timeout: %w", err)
	}

	return nil
}

// parseChatTarget resolves a configured chat ID into either a numeric chat ID
// or an @channel username. Exactly one of the two return values is set.
func parseChatTarget(raw string) (int64, string, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "@") {
		if len(trimmed) < 2 {
			return 0, "", fmt.Errorf("invalid chat ID %q", raw)
		}
		return 0, trimmed, nil
	}

	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid chat ID %q: must be numeric or start with @", raw)
	}
	return id, "", nil
}

// TelegramChannel delivers digests through the Telegram Bot API.
// Digest captions are bounded well below Telegram's 1024-character photo
// caption limit, so sends never need chunking.
type TelegramChannel struct {
	config      *TelegramConfig
	bot         *tgbotapi.BotAPI
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

// NewTelegramChannel creates a Telegram delivery channel.
//
// When the configuration is disabled the returned channel reports
// IsEnabled() == false and never touches the network. When enabled, the
// constructor validates the configuration and verifies the bot token
// against the Bot API.
func NewTelegramChannel(config *TelegramConfig) (*TelegramChannel, error) {
	if config == nil {
		config = LoadTelegramConfig()
	}

	if !config.Enabled {
		slog.Info("Telegram channel disabled")
		return &TelegramChannel{config: config}, nil
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telegram config: %w", err)
	}

	endpoint := config.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	client := &http.Client{Timeout: config.SendTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(config.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot api: %w", err)
	}

	slog.Info("Telegram channel ready",
		slog.String("bot_username", bot.Self.UserName),
		slog.Int("chats", len(config.ChatIDs)))

	return &TelegramChannel{
		config:      config,
		bot:         bot,
		rateLimiter: NewRateLimiter(telegramSendsPerSecond, telegramSendBurst),
		breaker:     circuitbreaker.New(circuitbreaker.TelegramAPIConfig()),
		retryConfig: retry.TelegramAPIConfig(),
	}, nil
}

// Name implements Channel.Name.
func (c *TelegramChannel) Name() string {
	return "telegram"
}

// IsEnabled implements Channel.IsEnabled.
func (c *TelegramChannel) IsEnabled() bool {
	return c.config.Enabled && c.bot != nil
}

// BreakerOpen reports whether the channel's circuit breaker is currently
// rejecting sends. Used by health endpoints.
func (c *TelegramChannel) BreakerOpen() bool {
	return c.breaker != nil && c.breaker.IsOpen()
}

// Send implements Channel.Send. The digest is delivered to every configured
// chat; failures for individual chats are collected so one bad chat does not
// starve the rest. An open circuit breaker aborts the whole send because the
// remaining chats would be rejected the same way.
func (c *TelegramChannel) Send(ctx context.Context, digest *entity.Digest) error {
	if !c.IsEnabled() {
		return ErrChannelDisabled
	}
	if digest == nil || digest.Caption == "" {
		return ErrInvalidDigest
	}

	requestID := requestid.FromContext(ctx)

	var errs []error
	for _, chatID := range c.config.ChatIDs {
		if err := c.sendToChat(ctx, chatID, digest); err != nil {
			if errors.Is(err, ErrCircuitBreakerOpen) {
				return err
			}
			slog.WarnContext(ctx, "Telegram send failed for chat",
				slog.String("request_id", requestID),
				slog.String("chat", chatID),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("chat %s: %w", chatID, err))
			continue
		}

		slog.InfoContext(ctx, "Digest delivered to chat",
			slog.String("request_id", requestID),
			slog.String("chat", chatID),
			slog.Int("caption_chars", digest.CharCount),
			slog.Bool("with_image", digest.HasImage()))
	}

	return errors.Join(errs...)
}

// sendToChat delivers the digest to a single chat: local rate limit first,
// then the Bot API exchange guarded by the circuit breaker and retried with
// backoff for transient failures.
func (c *TelegramChannel) sendToChat(ctx context.Context, chatID string, digest *entity.Digest) error {
	waitStart := time.Now()
	if err := c.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	RecordRateLimitWait(c.Name(), time.Since(waitStart))

	sendCtx, cancel := context.WithTimeout(ctx, c.config.SendTimeout)
	defer cancel()

	err := retry.WithBackoff(sendCtx, c.retryConfig, func() error {
		_, execErr := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.deliver(sendCtx, chatID, digest)
		})
		if execErr != nil {
			if errors.Is(execErr, gobreaker.ErrOpenState) || errors.Is(execErr, gobreaker.ErrTooManyRequests) {
				slog.WarnContext(sendCtx, "Telegram circuit breaker rejecting sends",
					slog.String("chat", chatID),
					slog.String("state", c.breaker.State().String()))
				return ErrCircuitBreakerOpen
			}
			return execErr
		}
		return nil
	})

	SetBreakerState(c.Name(), breakerStateValue(c.breaker.State()))

	if err != nil {
		var httpErr *retry.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
			RecordRateLimitHit(c.Name())
		}
		return err
	}
	return nil
}

// deliver performs one Bot API exchange. When Telegram rejects the caption
// markup, the digest is resent once without a parse mode so it still goes
// out as plain text.
func (c *TelegramChannel) deliver(ctx context.Context, chatID string, digest *entity.Digest) error {
	msg, err := c.buildMessage(chatID, digest, c.config.ParseMode)
	if err != nil {
		return err
	}

	if _, err = c.bot.Send(msg); err == nil {
		return nil
	}

	if c.config.ParseMode != "" && isParseError(err) {
		slog.WarnContext(ctx, "Telegram rejected caption markup, resending as plain text",
			slog.String("chat", chatID),
			slog.Any("error", err))

		plain, buildErr := c.buildMessage(chatID, digest, "")
		if buildErr != nil {
			return buildErr
		}
		var plainErr error
		if _, plainErr = c.bot.Send(plain); plainErr == nil {
			return nil
		}
		err = plainErr
	}

	return mapAPIError(err)
}

// buildMessage constructs the Bot API payload: photo-with-caption when the
// digest carries an image URL, plain text message when it does not.
func (c *TelegramChannel) buildMessage(chatID string, digest *entity.Digest, parseMode string) (tgbotapi.Chattable, error) {
	numericID, username, err := parseChatTarget(chatID)
	if err != nil {
		return nil, err
	}

	if digest.HasImage() {
		var photo tgbotapi.PhotoConfig
		if username != "" {
			photo = tgbotapi.NewPhotoToChannel(username, tgbotapi.FileURL(digest.ImageURL))
		} else {
			photo = tgbotapi.NewPhoto(numericID, tgbotapi.FileURL(digest.ImageURL))
		}
		photo.Caption = digest.Caption
		photo.ParseMode = parseMode
		return photo, nil
	}

	var msg tgbotapi.MessageConfig
	if username != "" {
		msg = tgbotapi.NewMessageToChannel(username, digest.Caption)
	} else {
		msg = tgbotapi.NewMessage(numericID, digest.Caption)
	}
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	return msg, nil
}

// isParseError reports whether the Bot API rejected the message because of
// unbalanced caption markup.
func isParseError(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "can't parse entities")
}

// mapAPIError converts Bot API errors into retry.HTTPError so the backoff
// helper can tell transient failures (5xx, 429) from permanent ones (4xx).
// Transport-level errors pass through unchanged; the retry package already
// classifies those.
func mapAPIError(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	message := apiErr.Message
	if apiErr.RetryAfter > 0 {
		message = fmt.Sprintf("%s (retry after %ds)", apiErr.Message, apiErr.RetryAfter)
	}
	return &retry.HTTPError{StatusCode: apiErr.Code, Message: message}
}

// breakerStateValue encodes a gobreaker state for the state gauge.
func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateOpen:
		return 2
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 0
	}
}
