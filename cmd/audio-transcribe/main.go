package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/LucianoRicardo737/audio-transcribe/internal/audio"
	"github.com/LucianoRicardo737/audio-transcribe/internal/config"
	"github.com/LucianoRicardo737/audio-transcribe/internal/controller"
	"github.com/LucianoRicardo737/audio-transcribe/internal/hotkey"
	"github.com/LucianoRicardo737/audio-transcribe/internal/models"
	"github.com/LucianoRicardo737/audio-transcribe/internal/output"
	"github.com/LucianoRicardo737/audio-transcribe/internal/transcribe"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/audio-transcribe/config.yaml)")
	deviceFlag := flag.Int("device", -1, "input device index (-1 = system default)")
	listDevices := flag.Bool("list-devices", false, "list audio input devices and exit")
	filePath := flag.String("file", "", "transcribe an existing WAV file and exit")
	fetchModel := flag.Bool("fetch-model", false, "download the local whisper fallback model and exit")
	saveConfig := flag.Bool("save-config", false, "write the effective config to the default path and exit")
	flag.Parse()

	// A .env file may carry GROQ_API_KEY or TRANSCRIBE_LANGUAGE.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "device" {
			cfg.Audio.Device = *deviceFlag
		}
	})

	switch {
	case *fetchModel:
		if err := models.DownloadWhisper(config.DefaultModelsDir()); err != nil {
			log.Fatalf("model download: %v", err)
		}
	case *saveConfig:
		path := config.DefaultConfigPath()
		if err := cfg.Save(path); err != nil {
			log.Fatalf("saving config: %v", err)
		}
		log.Printf("Config written to %s", path)
	case *listDevices:
		runListDevices()
	case *filePath != "":
		runOnce(cfg, *filePath)
	default:
		runApp(cfg)
	}
}

// runListDevices prints the current input device listing.
func runListDevices() {
	capture, err := audio.NewCapture()
	if err != nil {
		log.Fatalf("audio subsystem: %v", err)
	}
	defer capture.Close()

	devices, err := capture.ListDevices()
	if err != nil {
		log.Fatalf("enumerating devices: %v", err)
	}
	if len(devices) == 0 {
		fmt.Println("No input devices found.")
		return
	}

	fmt.Println("Available input devices:")
	for _, d := range devices {
		mark := ""
		if d.Default {
			mark = "  *default"
		}
		fmt.Printf("  [%d] %s (%d ch, %d Hz)%s\n", d.ID, d.Name, d.Channels, d.SampleRate, mark)
	}
}

// runOnce transcribes an existing WAV file and prints the text.
func runOnce(cfg *config.Config, path string) {
	chain := transcribe.NewChainFromConfig(cfg)
	text, err := chain.Transcribe(context.Background(), path, cfg.Language)
	if err != nil {
		log.Fatalf("transcription: %v", err)
	}

	fmt.Println(text)

	writer := output.NewWriter(cfg.Output.Method)
	if err := writer.Deliver(text); err != nil {
		slog.Warn("text delivery failed", "error", err)
	}
}

// runApp runs the interactive hotkey-driven dictation loop.
func runApp(cfg *config.Config) {
	printBanner(cfg)

	capture, err := audio.NewCapture()
	if err != nil {
		log.Fatalf("Failed to initialize audio capture: %v\n\nEnsure a working audio backend and microphone access.", err)
	}

	chain := transcribe.NewChainFromConfig(cfg)
	writer := output.NewWriter(cfg.Output.Method)
	log.Printf("Text output ready (method: %s)", writer.Method())

	ctl := controller.New(capture, chain, writer, &consoleSink{}, controller.Config{
		Language:         cfg.Language,
		Channels:         cfg.Audio.Channels,
		TargetSampleRate: cfg.Audio.SampleRate,
		DeviceID:         -1,
	})

	if cfg.Audio.Device >= 0 {
		if err := ctl.SelectDevice(cfg.Audio.Device); err != nil {
			log.Printf("WARNING: %v, falling back to default input", err)
		}
	}

	listener := hotkey.NewListener(cfg.Hotkey.Keys, cfg.Hotkey.Mode)
	log.Printf("Hotkey listener ready (%s, mode: %s)", strings.Join(cfg.Hotkey.Keys, "+"), cfg.Hotkey.Mode)

	// Signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go listener.Run()

	log.Println("Ready! Press", strings.Join(cfg.Hotkey.Keys, "+"), "to dictate. Ctrl+C to quit.")

	events := listener.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				log.Println("Hotkey listener stopped")
				capture.Close()
				return
			}

			switch ev.Type {
			case hotkey.EventToggle:
				ctl.ToggleRecording()
			case hotkey.EventStart:
				ctl.StartRecording()
			case hotkey.EventStop:
				ctl.StopRecording()
			}

		case sig := <-sigCh:
			log.Printf("Received %s, shutting down...", sig)
			if ctl.State() == controller.StateRecording {
				ctl.CancelRecording()
			}
			capture.Close()
			log.Println("Goodbye!")
			// Exit directly to avoid gohook's C cleanup crash.
			// The OS reclaims the event hook on process exit.
			os.Exit(0)
		}
	}
}

// consoleSink prints controller notifications for the terminal front
// end. Callbacks only log and print, so they never re-enter the
// controller.
type consoleSink struct{}

func (*consoleSink) StateChanged(s controller.State) {
	slog.Debug("state changed", "state", s)
}

func (*consoleSink) TranscriptionDone(text string) {
	fmt.Println(text)
}

func (*consoleSink) TranscriptionError(message string) {
	log.Printf("ERROR: %s", message)
}

func (*consoleSink) StatusMessage(message string) {
	log.Println(message)
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	log.Println("No config file found, using defaults")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== audio-transcribe ===")
	fmt.Printf("  Language: %s\n", cfg.Language)
	fmt.Printf("  Remote:   %s (%s)\n", cfg.Remote.Endpoint, cfg.Remote.Model)
	fmt.Printf("  Fallback: %s (%s)\n", cfg.Whisper.BinPath, cfg.Whisper.ModelPath)
	fmt.Printf("  Audio:    device %d, %d Hz target, %d ch\n", cfg.Audio.Device, cfg.Audio.SampleRate, cfg.Audio.Channels)
	fmt.Printf("  Hotkey:   %s (%s mode)\n", strings.Join(cfg.Hotkey.Keys, "+"), cfg.Hotkey.Mode)
	fmt.Printf("  Output:   %s\n", cfg.Output.Method)
	fmt.Printf("  Log:      %s\n", cfg.LogLevel)
	fmt.Println("========================")
}
