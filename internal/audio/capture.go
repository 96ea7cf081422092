// Package audio records microphone input through PortAudio and turns a
// finished recording session into a mono 16-bit PCM WAV artifact.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// ErrAlreadyRecording is returned by StartSession while a session is active.
var ErrAlreadyRecording = errors.New("recording already in progress")

// Device describes one audio input endpoint. ID is the PortAudio device
// index, SampleRate the device's native rate.
type Device struct {
	ID         int
	Name       string
	Channels   int
	SampleRate int
	Default    bool
}

// Capture owns at most one recording session against a selected input
// device. Call Close() when done.
type Capture struct {
	mu         sync.Mutex
	stream     *portaudio.Stream
	chunks     [][]float32
	recording  bool
	channels   int
	nativeRate int
	targetRate int
}

// NewCapture initializes the audio subsystem. Call Close() when done.
func NewCapture() (*Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing audio subsystem: %w", err)
	}
	return &Capture{}, nil
}

// ListDevices queries the audio subsystem for input-capable devices.
// The listing is refreshed on every call; an empty slice means no input
// devices, not an error.
func (c *Capture) ListDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating audio devices: %w", err)
	}

	defaultIndex := -1
	if def, err := portaudio.DefaultInputDevice(); err == nil {
		defaultIndex = def.Index
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info.MaxInputChannels <= 0 {
			continue
		}
		devices = append(devices, Device{
			ID:         info.Index,
			Name:       info.Name,
			Channels:   info.MaxInputChannels,
			SampleRate: int(info.DefaultSampleRate),
			Default:    info.Index == defaultIndex,
		})
	}
	return devices, nil
}

// StartSession opens an input stream on the given device (-1 = system
// default) at its native sample rate and begins buffering audio blocks.
// Finished artifacts are resampled to targetRate by StopSession.
func (c *Capture) StartSession(deviceID, channels, targetRate int) error {
	c.mu.Lock()
	if c.recording {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}
	c.chunks = nil
	c.recording = true
	c.mu.Unlock()

	dev, err := c.resolveDevice(deviceID)
	if err != nil {
		c.abortStart()
		return err
	}

	if channels < 1 {
		channels = 1
	}
	if channels > dev.MaxInputChannels {
		channels = dev.MaxInputChannels
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: channels,
			Latency:  dev.DefaultHighInputLatency,
		},
		SampleRate:      dev.DefaultSampleRate,
		FramesPerBuffer: portaudio.FramesPerBufferUnspecified,
	}

	stream, err := portaudio.OpenStream(params, c.onData)
	if err != nil {
		c.abortStart()
		return fmt.Errorf("opening input device: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		c.abortStart()
		return fmt.Errorf("starting input stream: %w", err)
	}

	c.mu.Lock()
	c.stream = stream
	c.channels = channels
	c.nativeRate = int(dev.DefaultSampleRate)
	c.targetRate = targetRate
	c.mu.Unlock()

	return nil
}

// StopSession ends the active session and writes the captured audio to a
// temporary WAV file at the target sample rate, returning its path. It
// returns ("", nil) when no session is active or no audio arrived; both
// are normal outcomes, not errors. The caller owns the returned file.
func (c *Capture) StopSession() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.recording {
		return "", nil
	}
	c.recording = false

	if c.stream != nil {
		// A faulted stream still leaves the buffered blocks usable.
		if err := c.stream.Stop(); err != nil {
			slog.Warn("stopping input stream", "error", err)
		}
		if err := c.stream.Close(); err != nil {
			slog.Warn("closing input stream", "error", err)
		}
		c.stream = nil
	}

	if len(c.chunks) == 0 {
		return "", nil
	}

	chunks := c.chunks
	c.chunks = nil

	return writeArtifact(chunks, c.channels, c.nativeRate, c.targetRate)
}

// IsRecording reports whether a session is currently active.
func (c *Capture) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// Close stops any active session and releases the audio subsystem.
func (c *Capture) Close() error {
	c.mu.Lock()
	if c.stream != nil {
		_ = c.stream.Stop()
		_ = c.stream.Close()
		c.stream = nil
	}
	c.recording = false
	c.chunks = nil
	c.mu.Unlock()

	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminating audio subsystem: %w", err)
	}
	return nil
}

// onData runs on the audio thread for every available block. It only
// appends a copy of the block; errors are logged, never propagated, so
// the audio subsystem is never stalled.
func (c *Capture) onData(in []float32) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("audio callback panic", "panic", r)
		}
	}()

	block := make([]float32, len(in))
	copy(block, in)

	c.mu.Lock()
	if c.recording {
		c.chunks = append(c.chunks, block)
	}
	c.mu.Unlock()
}

// resolveDevice maps a device index to PortAudio device info.
func (c *Capture) resolveDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID < 0 {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("resolving default input device: %w", err)
		}
		return dev, nil
	}

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating audio devices: %w", err)
	}
	for _, info := range infos {
		if info.Index == deviceID && info.MaxInputChannels > 0 {
			return info, nil
		}
	}
	return nil, fmt.Errorf("no input device with index %d", deviceID)
}

func (c *Capture) abortStart() {
	c.mu.Lock()
	c.recording = false
	c.mu.Unlock()
}
