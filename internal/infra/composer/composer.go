// Package composer builds daily crypto market digests with the Perplexity
// chat completions API. Raw model output is shaped into a capped Telegram
// caption with a matching header image; when the API is unreachable the
// composer degrades to a static fallback edition, so a digest is always
// produced.
package composer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
	"github.com/DepSpiel/telegram-pidrgpt/internal/requestid"
)

const (
	// systemPrompt pins the reporter persona. Predictions and investment
	// guidance are excluded at the prompt level, not post-filtered.
	systemPrompt = "You are a professional crypto news reporter. Provide factual market summaries " +
		"focused on news and events. Report what happened and what's upcoming without offering " +
		"market predictions or investment guidance."

	// userPromptFormat carries the market question; the verb "Summarize"
	// and the 800-character bound match the published caption budget.
	userPromptFormat = "Summarize today's top global news about crypto market. " +
		"Include major global economic events, and highlight any breaking news about near future events. " +
		"Make an article no more than 800 characters (with spaces). " +
		"Don't provide any guidance for the market trend.\n\nToday's date: %s"

	connectivityPrompt    = "Test"
	connectivityMaxTokens = 10
)

// Perplexity composes digests from the Perplexity chat completions API.
// It is stateless across calls; every compose is a fresh request.
type Perplexity struct {
	apiKey          string
	config          *Config
	httpClient      *http.Client
	probeClient     *http.Client
	metricsRecorder ComposeMetricsRecorder
}

// NewPerplexity creates a composer backed by the Perplexity API with
// configuration loaded from the environment.
func NewPerplexity(apiKey string) *Perplexity {
	return NewPerplexityWithConfig(apiKey, LoadConfig())
}

// NewPerplexityWithConfig creates a composer with explicit configuration.
func NewPerplexityWithConfig(apiKey string, config *Config) *Perplexity {
	slog.Info("Initialized Perplexity composer with configuration",
		slog.String("model", config.Model),
		slog.Int("max_tokens", config.MaxTokens),
		slog.Duration("request_timeout", config.RequestTimeout))

	return &Perplexity{
		apiKey: apiKey,
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		probeClient: &http.Client{
			Timeout: config.ProbeTimeout,
		},
		metricsRecorder: NewPrometheusComposeMetrics(),
	}
}

// ComposeDigest builds today's digest. A failed or unusable news request
// degrades to the fallback edition, so the returned digest is always
// publishable; the error return covers digest construction only.
func (p *Perplexity) ComposeDigest(ctx context.Context) (*entity.Digest, error) {
	ctx, requestID := requestid.Ensure(ctx)
	date := time.Now().Format(dateLayout)

	slog.InfoContext(ctx, "Requesting crypto news digest",
		slog.String("request_id", requestID),
		slog.String("model", p.config.Model),
		slog.String("date", date))

	start := time.Now()
	content, err := p.requestContent(ctx, date)
	duration := time.Since(start)
	p.metricsRecorder.RecordDuration(duration)

	var caption string
	fallback := false

	if err != nil {
		slog.WarnContext(ctx, "News request failed, composing fallback digest",
			slog.String("request_id", requestID),
			slog.String("reason", failureReason(err)),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		p.metricsRecorder.RecordFallback()
		caption = fallbackCaption(date)
		fallback = true
	} else {
		caption = formatCaption(content, date)
	}

	imageURL := p.probeImage(ctx, selectImage(caption))

	digest, err := entity.NewDigest(caption, imageURL, fallback)
	if err != nil {
		return nil, fmt.Errorf("construct digest: %w", err)
	}

	p.metricsRecorder.RecordCaptionLength(digest.CharCount)

	slog.InfoContext(ctx, "Digest composed",
		slog.String("request_id", requestID),
		slog.Int("caption_chars", digest.CharCount),
		slog.Bool("fallback", digest.Fallback),
		slog.Duration("duration", duration))

	return digest, nil
}

// ComposeTopic builds a digest for a named topic. The current edition
// covers the whole crypto market regardless of topic, so the argument is
// recorded and the daily digest is returned.
func (p *Perplexity) ComposeTopic(ctx context.Context, topic string) (*entity.Digest, error) {
	if topic != "" {
		slog.InfoContext(ctx, "Topic digests share the daily edition",
			slog.String("topic", topic))
	}
	return p.ComposeDigest(ctx)
}

// CheckConnectivity sends a minimal completion request to verify the API is
// reachable with the configured credentials. Errors are swallowed; the
// result is a plain yes or no.
func (p *Perplexity) CheckConnectivity(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.config.ConnectivityTimeout)
	defer cancel()

	payload := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: connectivityPrompt},
		},
		MaxTokens: connectivityMaxTokens,
	}

	if _, err := p.postCompletion(ctx, payload); err != nil {
		slog.WarnContext(ctx, "Connectivity check failed",
			slog.Any("error", err))
		return false
	}

	slog.InfoContext(ctx, "Perplexity API connection successful")
	return true
}

// requestContent performs the chat completions call and extracts the
// digest text from the response.
func (p *Perplexity) requestContent(ctx context.Context, date string) (string, error) {
	payload := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(userPromptFormat, date)},
		},
		MaxTokens:   p.config.MaxTokens,
		Temperature: float32(p.config.Temperature),
	}

	body, err := p.postCompletion(ctx, payload)
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(body) {
		return "", ErrInvalidResponse
	}

	content := extractContent(body)
	if content == "" {
		return "", ErrEmptyContent
	}

	return content, nil
}

// postCompletion sends a chat completions request and returns the raw
// response body. Only a 200 response counts as success.
//
// Error types:
//   - 429: Rate limit error (contains Retry-After duration)
//   - 4xx (non-429): Client error
//   - 5xx: Server error
//   - Network error: Connection/timeout error
func (p *Perplexity) postCompletion(ctx context.Context, payload openai.ChatCompletionRequest) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read response body for extraction and error messages
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			Message:    "Perplexity rate limit exceeded",
			RetryAfter: extractRetryAfter(resp),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Perplexity API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Perplexity API server error: %s", string(body)),
		}
	}

	return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// extractRetryAfter reads the Retry-After header (in seconds), defaulting
// to 5 seconds when absent or unparsable.
func extractRetryAfter(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}
