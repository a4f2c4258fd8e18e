package composer

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	pkgconfig "github.com/DepSpiel/telegram-pidrgpt/pkg/config"
)

// Default request parameters for the Perplexity chat completions API.
const (
	defaultBaseURL             = "https://api.perplexity.ai/chat/completions"
	defaultModel               = "sonar-pro"
	defaultMaxTokens           = 350
	defaultTemperature         = 0.3
	defaultRequestTimeout      = 35 * time.Second
	defaultConnectivityTimeout = 20 * time.Second
	defaultProbeTimeout        = 10 * time.Second
)

// Config holds configuration parameters for the Perplexity composer.
// Configuration is loaded from environment variables with fallback to defaults.
type Config struct {
	// BaseURL is the chat completions endpoint.
	BaseURL string

	// Model is the Perplexity model identifier used for digest generation.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Temperature controls response randomness. Low values keep the
	// digest factual rather than speculative.
	Temperature float64

	// RequestTimeout is the maximum duration for a single digest request.
	RequestTimeout time.Duration

	// ConnectivityTimeout is the maximum duration for the connectivity probe.
	ConnectivityTimeout time.Duration

	// ProbeTimeout is the maximum duration for a header image HEAD probe.
	ProbeTimeout time.Duration
}

// LoadConfig loads composer configuration from environment variables.
// Unparseable values fall back to defaults with a warning log, and a
// configuration that parses but fails validation (out-of-range token cap or
// temperature, non-absolute URL) is replaced wholesale by the defaults,
// keeping the composer usable even with a broken environment.
//
// Environment variables:
//   - PERPLEXITY_BASE_URL: Chat completions endpoint (default: https://api.perplexity.ai/chat/completions)
//   - COMPOSER_MODEL: Model identifier (default: sonar-pro)
//   - COMPOSER_MAX_TOKENS: Response token cap (default: 350)
//   - COMPOSER_TEMPERATURE: Sampling temperature (default: 0.3)
//   - COMPOSER_REQUEST_TIMEOUT: Digest request timeout (default: 35s)
//   - COMPOSER_CONNECTIVITY_TIMEOUT: Connectivity probe timeout (default: 20s)
//   - IMAGE_PROBE_TIMEOUT: Header image HEAD probe timeout (default: 10s)
func LoadConfig() *Config {
	cfg := &Config{
		BaseURL:             pkgconfig.GetEnvString("PERPLEXITY_BASE_URL", defaultBaseURL),
		Model:               pkgconfig.GetEnvString("COMPOSER_MODEL", defaultModel),
		MaxTokens:           pkgconfig.GetEnvInt("COMPOSER_MAX_TOKENS", defaultMaxTokens),
		Temperature:         pkgconfig.GetEnvFloat64("COMPOSER_TEMPERATURE", defaultTemperature),
		RequestTimeout:      pkgconfig.GetEnvDuration("COMPOSER_REQUEST_TIMEOUT", defaultRequestTimeout),
		ConnectivityTimeout: pkgconfig.GetEnvDuration("COMPOSER_CONNECTIVITY_TIMEOUT", defaultConnectivityTimeout),
		ProbeTimeout:        pkgconfig.GetEnvDuration("IMAGE_PROBE_TIMEOUT", defaultProbeTimeout),
	}

	if err := cfg.Validate(); err != nil {
		slog.Warn("Invalid composer configuration, using defaults",
			slog.Any("error", err))
		return defaultConfig()
	}

	return cfg
}

func defaultConfig() *Config {
	return &Config{
		BaseURL:             defaultBaseURL,
		Model:               defaultModel,
		MaxTokens:           defaultMaxTokens,
		Temperature:         defaultTemperature,
		RequestTimeout:      defaultRequestTimeout,
		ConnectivityTimeout: defaultConnectivityTimeout,
		ProbeTimeout:        defaultProbeTimeout,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || !parsed.IsAbs() {
		return fmt.Errorf("base URL must be absolute, got %q", c.BaseURL)
	}

	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature)
	}

	if err := pkgconfig.ValidatePositiveDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout: %w", err)
	}

	if err := pkgconfig.ValidatePositiveDuration(c.ConnectivityTimeout); err != nil {
		return fmt.Errorf("invalid connectivity timeout: %w", err)
	}

	if err := pkgconfig.ValidatePositiveDuration(c.ProbeTimeout); err != nil {
		return fmt.Errorf("invalid probe timeout: %w", err)
	}

	return nil
}
