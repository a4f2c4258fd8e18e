// Package main provides a CLI command for composing a digest without publishing it.
// Usage: compose [--topic TOPIC] [--connectivity-check] [--json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DepSpiel/telegram-pidrgpt/internal/domain/entity"
	"github.com/DepSpiel/telegram-pidrgpt/internal/infra/composer"
	"github.com/DepSpiel/telegram-pidrgpt/internal/observability/logging"
)

// DigestOutput represents the JSON output format for compose results.
type DigestOutput struct {
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url,omitempty"`
	Fallback bool   `json:"fallback"`
}

func main() {
	// Parse command-line arguments
	var (
		topic             string
		connectivityCheck bool
		jsonOutput        bool
	)

	flag.StringVar(&topic, "topic", "", "Compose a digest about a specific topic instead of the daily news")
	flag.BoolVar(&connectivityCheck, "connectivity-check", false, "Only verify the composer API is reachable")
	flag.BoolVar(&jsonOutput, "json", false, "Print the digest as JSON")
	flag.Parse()

	// Initialize logger
	logger := initLogger()

	apiKey := os.Getenv("PERPLEXITY_API_KEY")
	if apiKey == "" {
		logger.Error("PERPLEXITY_API_KEY is required")
		fmt.Fprintln(os.Stderr, "Error: PERPLEXITY_API_KEY is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: compose [--topic TOPIC] [--connectivity-check] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  compose")
		fmt.Fprintln(os.Stderr, "  compose --topic bitcoin")
		fmt.Fprintln(os.Stderr, "  compose --json")
		fmt.Fprintln(os.Stderr, "  compose --connectivity-check")
		os.Exit(1)
	}

	comp := composer.NewPerplexity(apiKey)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if connectivityCheck {
		if comp.CheckConnectivity(ctx) {
			fmt.Println("connectivity: ok")
			return
		}
		fmt.Fprintln(os.Stderr, "connectivity: failed")
		os.Exit(1)
	}

	var (
		digest *entity.Digest
		err    error
	)
	if topic != "" {
		logger.Info("Composing topic digest", slog.String("topic", topic))
		digest, err = comp.ComposeTopic(ctx, topic)
	} else {
		logger.Info("Composing daily digest")
		digest, err = comp.ComposeDigest(ctx)
	}
	if err != nil {
		logger.Error("compose failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: Compose failed: %v\n", err)
		os.Exit(1)
	}

	// Output results
	if jsonOutput {
		outputJSON(digest)
	} else {
		outputText(digest)
	}
}

// outputText prints the digest in human-readable format.
func outputText(digest *entity.Digest) {
	fmt.Println(digest.Caption)

	if digest.HasImage() {
		fmt.Printf("\nImage: %s\n", digest.ImageURL)
	}
	if digest.Fallback {
		fmt.Println("\n(fallback content)")
	}
}

// outputJSON prints the digest in JSON format.
func outputJSON(digest *entity.Digest) {
	output := DigestOutput{
		Caption:  digest.Caption,
		ImageURL: digest.ImageURL,
		Fallback: digest.Fallback,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

// initLogger installs the CLI logger (stderr) so stdout carries only the digest.
func initLogger() *slog.Logger {
	logger := logging.NewCLILogger()
	slog.SetDefault(logger)
	return logger
}
