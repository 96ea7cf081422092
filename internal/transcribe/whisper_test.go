package transcribe

import (
	"context"
	"strings"
	"testing"
)

func TestWhisperMissingBinary(t *testing.T) {
	p := NewWhisperProvider("definitely-not-a-real-binary-xyz", "/tmp/model.bin")

	_, err := p.Transcribe(context.Background(), "audio.wav", "es")
	if err == nil {
		t.Fatal("Transcribe() with missing binary should return error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want binary-not-found message", err)
	}
}

func TestWhisperLoadErrorIsCached(t *testing.T) {
	p := NewWhisperProvider("definitely-not-a-real-binary-xyz", "/tmp/model.bin")

	_, err1 := p.Transcribe(context.Background(), "audio.wav", "es")
	_, err2 := p.Transcribe(context.Background(), "audio.wav", "es")

	if err1 == nil || err2 == nil {
		t.Fatal("both attempts should fail")
	}
	// Resolution happens once; the cached error is reused.
	if err1.Error() != err2.Error() {
		t.Errorf("cached load error differs: %v vs %v", err1, err2)
	}
}

func TestWhisperMissingModel(t *testing.T) {
	// "true" exists on any PATH; the model path does not.
	p := NewWhisperProvider("true", "/nonexistent/model.bin")

	_, err := p.Transcribe(context.Background(), "audio.wav", "es")
	if err == nil {
		t.Fatal("Transcribe() with missing model should return error")
	}
	if !strings.Contains(err.Error(), "model") {
		t.Errorf("error = %v, want model-not-found message", err)
	}
}

func TestBuildWhisperArgs(t *testing.T) {
	args := buildWhisperArgs("/m/ggml-base.bin", "/tmp/a.wav", "es")

	want := []string{"-m", "/m/ggml-base.bin", "-f", "/tmp/a.wav", "-nt", "-np", "-l", "es"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildWhisperArgsNoLanguage(t *testing.T) {
	args := buildWhisperArgs("/m/ggml-base.bin", "/tmp/a.wav", "")

	for _, a := range args {
		if a == "-l" {
			t.Errorf("args = %v, should not contain -l without a language hint", args)
		}
	}
}

func TestProviderNames(t *testing.T) {
	if got := NewWhisperProvider("b", "m").Name(); got != "whisper" {
		t.Errorf("Name() = %q, want %q", got, "whisper")
	}
	if got := NewGroqProvider("e", "m", "k", 0).Name(); got != "groq" {
		t.Errorf("Name() = %q, want %q", got, "groq")
	}
}
