package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// WhisperProvider runs the whisper.cpp CLI against a local ggml model.
// Binary and model are resolved once per process and cached; inference
// runs synchronously and is only bounded by the caller's context.
type WhisperProvider struct {
	binPath   string
	modelPath string

	loadOnce    sync.Once
	loadErr     error
	resolvedBin string
}

// NewWhisperProvider creates the local fallback provider. Nothing is
// resolved until the first Transcribe call.
func NewWhisperProvider(binPath, modelPath string) *WhisperProvider {
	return &WhisperProvider{binPath: binPath, modelPath: modelPath}
}

// Name identifies the provider in logs.
func (p *WhisperProvider) Name() string { return "whisper" }

// Transcribe runs the whisper.cpp binary on the audio file and returns
// its plain-text output.
func (p *WhisperProvider) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	if err := p.load(); err != nil {
		return "", err
	}

	args := buildWhisperArgs(p.modelPath, audioPath, language)
	cmd := exec.CommandContext(ctx, p.resolvedBin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper.cpp run: %w (stderr: %s)", err, truncate(strings.TrimSpace(stderr.String()), 200))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// load resolves the binary and model paths, at most once per process.
// A resolution failure is cached so later attempts fail fast.
func (p *WhisperProvider) load() error {
	p.loadOnce.Do(func() {
		bin, err := exec.LookPath(p.binPath)
		if err != nil {
			p.loadErr = fmt.Errorf("whisper.cpp binary %q not found: %w", p.binPath, err)
			return
		}
		if _, err := os.Stat(p.modelPath); err != nil {
			p.loadErr = fmt.Errorf("whisper model %q not found: %w", p.modelPath, err)
			return
		}
		p.resolvedBin = bin
	})
	return p.loadErr
}

// buildWhisperArgs builds whisper.cpp CLI args for plain stdout text.
func buildWhisperArgs(modelPath, audioPath, language string) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-nt",
		"-np",
	}
	if language != "" {
		args = append(args, "-l", language)
	}
	return args
}
