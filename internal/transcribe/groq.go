package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"
)

// GroqProvider sends WAV artifacts to a hosted OpenAI-compatible
// transcription endpoint.
type GroqProvider struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewGroqProvider creates a remote provider. An empty apiKey makes every
// Transcribe call fail so the chain falls through to the next provider.
func NewGroqProvider(endpoint, model, apiKey string, timeout time.Duration) *GroqProvider {
	return &GroqProvider{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider in logs.
func (p *GroqProvider) Name() string { return "groq" }

// Transcribe uploads the audio file as multipart form data and returns
// the raw text body of a 200 response.
func (p *GroqProvider) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	if p.apiKey == "" {
		return "", errors.New("no API key configured")
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="audio.wav"`)
	hdr.Set("Content-Type", "audio/wav")
	part, err := w.CreatePart(hdr)
	if err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("reading audio file: %w", err)
	}

	if err := w.WriteField("model", p.model); err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if language != "" {
		if err := w.WriteField("language", language); err != nil {
			return "", fmt.Errorf("building multipart body: %w", err)
		}
	}
	if err := w.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("remote API request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading remote API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("remote API status %d: %s", resp.StatusCode, truncate(string(data), 100))
	}

	return strings.TrimSpace(string(data)), nil
}

// truncate shortens s for log/error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
