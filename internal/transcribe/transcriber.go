// Package transcribe provides speech-to-text providers and the ordered
// fallback chain that drives them.
//
// Providers:
//   - groq: hosted Whisper API over HTTPS (primary)
//   - whisper: local whisper.cpp binary (fallback)
package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LucianoRicardo737/audio-transcribe/internal/config"
)

// ErrAllProvidersFailed is returned when every provider in the chain
// failed or produced no text.
var ErrAllProvidersFailed = errors.New("all transcription providers failed")

// Provider converts a WAV artifact to text.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string
	// Transcribe returns the recognized text for the audio file, using
	// language as a hint (short ISO code, may be empty).
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// Chain tries providers strictly in order and stops at the first
// non-empty result. Individual failures are logged and swallowed; only
// exhaustion of the chain surfaces as an error.
type Chain struct {
	providers []Provider
}

// NewChain creates a Chain trying providers in the given order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// NewChainFromConfig builds the standard chain: remote API first, local
// whisper.cpp fallback second.
func NewChainFromConfig(cfg *config.Config) *Chain {
	return NewChain(
		NewGroqProvider(
			cfg.Remote.Endpoint,
			cfg.Remote.Model,
			cfg.RemoteAPIKey(),
			time.Duration(cfg.Remote.TimeoutSeconds)*time.Second,
		),
		NewWhisperProvider(cfg.Whisper.BinPath, cfg.Whisper.ModelPath),
	)
}

// Transcribe runs the provider chain against the audio file.
func (c *Chain) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	for _, p := range c.providers {
		text, err := p.Transcribe(ctx, audioPath, language)
		if err != nil {
			slog.Warn("transcription provider failed", "provider", p.Name(), "error", err)
			continue
		}
		if text == "" {
			slog.Warn("transcription provider returned no text", "provider", p.Name())
			continue
		}
		slog.Debug("transcription succeeded", "provider", p.Name())
		return text, nil
	}
	return "", ErrAllProvidersFailed
}
