// Package controller owns the recording/transcription state machine.
//
// A controller coordinates one audio capture session and one background
// transcription cycle at a time, and broadcasts every state transition
// and cycle outcome to an EventSink. It is safe to drive from any
// goroutine; front ends (CLI, hotkey loop, GUI) issue commands and
// observe notifications without sharing any other state.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/LucianoRicardo737/audio-transcribe/internal/audio"
)

// ErrUnknownDevice is returned by SelectDevice for an id that is not in
// the current device listing.
var ErrUnknownDevice = errors.New("unknown audio device")

// State is the controller's current phase.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateError      State = "error"
)

// Recorder is the capture contract the controller drives.
type Recorder interface {
	ListDevices() ([]audio.Device, error)
	StartSession(deviceID, channels, targetRate int) error
	StopSession() (string, error)
}

// Transcriber converts a finished audio artifact to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// TextWriter delivers transcribed text to the user (clipboard,
// keystroke injection). Delivery is best-effort.
type TextWriter interface {
	Deliver(text string) error
}

// EventSink receives controller notifications.
//
// Callbacks are invoked on whichever goroutine performs the transition,
// including the background worker, while the controller's lock is held.
// That guarantees notifications arrive in exact transition order, and it
// means a sink must return promptly and must not call back into the
// controller synchronously; a GUI sink re-dispatches to its own thread.
type EventSink interface {
	// StateChanged fires exactly once per state transition.
	StateChanged(state State)
	// TranscriptionDone fires with the text of a successful cycle,
	// before the transition back to idle.
	TranscriptionDone(text string)
	// TranscriptionError fires with a message when a cycle fails,
	// before the transition back to idle.
	TranscriptionError(message string)
	// StatusMessage carries informational progress text.
	StatusMessage(message string)
}

// Config holds the controller's session parameters.
type Config struct {
	Language         string
	Channels         int
	TargetSampleRate int
	DeviceID         int // -1 = system default input
}

// Controller is the orchestrator. Create with New.
type Controller struct {
	recorder    Recorder
	transcriber Transcriber
	output      TextWriter
	events      EventSink
	cfg         Config

	mu       sync.Mutex
	state    State
	deviceID int
	discard  bool
}

// New creates a Controller in the idle state. output may be nil when no
// text delivery is wanted; events may be nil for a headless controller.
func New(recorder Recorder, transcriber Transcriber, output TextWriter, events EventSink, cfg Config) *Controller {
	if events == nil {
		events = nopSink{}
	}
	if cfg.Channels < 1 {
		cfg.Channels = 1
	}
	return &Controller{
		recorder:    recorder,
		transcriber: transcriber,
		output:      output,
		events:      events,
		cfg:         cfg,
		state:       StateIdle,
		deviceID:    cfg.DeviceID,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Devices returns a fresh listing of available input devices.
func (c *Controller) Devices() ([]audio.Device, error) {
	return c.recorder.ListDevices()
}

// SelectDevice records the device used for future sessions. It fails
// with ErrUnknownDevice when id is absent from a fresh listing, leaving
// the active device unchanged.
func (c *Controller) SelectDevice(id int) error {
	devices, err := c.recorder.ListDevices()
	if err != nil {
		return fmt.Errorf("selecting device: %w", err)
	}

	for _, d := range devices {
		if d.ID != id {
			continue
		}
		c.mu.Lock()
		c.deviceID = id
		c.events.StatusMessage("Device: " + d.Name)
		c.mu.Unlock()
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownDevice, id)
}

// SelectedDevice returns the active device's info, or false when the
// system default is in use or the device disappeared from the listing.
func (c *Controller) SelectedDevice() (audio.Device, bool) {
	c.mu.Lock()
	id := c.deviceID
	c.mu.Unlock()

	if id < 0 {
		return audio.Device{}, false
	}
	devices, err := c.recorder.ListDevices()
	if err != nil {
		return audio.Device{}, false
	}
	for _, d := range devices {
		if d.ID == id {
			return d, true
		}
	}
	return audio.Device{}, false
}

// StartRecording begins a capture session. It returns false without
// side effects unless the state is idle. A capture open failure passes
// through the error state and settles back in idle.
func (c *Controller) StartRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return false
	}

	if err := c.recorder.StartSession(c.deviceID, c.cfg.Channels, c.cfg.TargetSampleRate); err != nil {
		slog.Error("failed to start recording", "error", err)
		c.setState(StateError)
		c.events.TranscriptionError(fmt.Sprintf("could not start recording: %v", err))
		c.setState(StateIdle)
		return false
	}

	c.setState(StateRecording)
	c.events.StatusMessage("Recording...")
	return true
}

// StopRecording ends the capture session and hands the audio to a
// background worker. It returns false unless the state is recording,
// and returns before transcription completes; the outcome arrives
// through the EventSink. Re-entry to recording is blocked until the
// worker finishes, so at most one cycle is ever in flight.
func (c *Controller) StopRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecording {
		return false
	}

	c.discard = false
	c.setState(StateProcessing)
	c.events.StatusMessage("Processing audio...")

	go c.process()
	return true
}

// ToggleRecording starts from idle and stops from recording. It is a
// no-op while processing, which prevents double submission.
func (c *Controller) ToggleRecording() bool {
	switch c.State() {
	case StateIdle:
		return c.StartRecording()
	case StateRecording:
		return c.StopRecording()
	default:
		return false
	}
}

// CancelRecording discards the current attempt. While recording it
// drops the captured audio and returns to idle; while processing it
// marks the in-flight result to be discarded when the worker completes
// (no mid-flight abort). Returns false when idle.
func (c *Controller) CancelRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRecording:
		if path, err := c.recorder.StopSession(); err != nil {
			slog.Warn("stopping cancelled session", "error", err)
		} else if path != "" {
			os.Remove(path)
		}
		c.events.StatusMessage("Recording discarded")
		c.setState(StateIdle)
		return true
	case StateProcessing:
		c.discard = true
		c.events.StatusMessage("Result will be discarded")
		return true
	default:
		return false
	}
}

// process is the background worker for one stop→idle cycle. It is the
// only place that blocks: on stream teardown, network I/O and local
// model inference.
func (c *Controller) process() {
	path, err := c.recorder.StopSession()
	if err != nil {
		slog.Error("failed to finalize recording", "error", err)
		c.finish("", fmt.Sprintf("recording failed: %v", err))
		return
	}
	if path == "" {
		c.finish("", "no audio captured")
		return
	}
	defer os.Remove(path)

	text, err := c.transcriber.Transcribe(context.Background(), path, c.cfg.Language)
	if err != nil {
		slog.Error("transcription failed", "error", err)
		c.finish("", "transcription failed")
		return
	}

	c.finish(text, "")
}

// finish reports the cycle outcome and returns the machine to idle.
// Exactly one of {TranscriptionDone, TranscriptionError} fires per
// cycle, always before the idle transition, unless the cycle was
// cancelled. Text delivery failures are logged, never surfaced as
// transcription errors.
func (c *Controller) finish(text, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.discard {
		c.discard = false
		c.events.StatusMessage("Result discarded")
		c.setState(StateIdle)
		return
	}

	if errMsg != "" {
		c.events.TranscriptionError(errMsg)
		c.setState(StateIdle)
		return
	}

	if c.output != nil {
		if err := c.output.Deliver(text); err != nil {
			slog.Warn("text delivery failed", "error", err)
		} else {
			c.events.StatusMessage("Copied to clipboard")
		}
	}
	c.events.TranscriptionDone(text)
	c.setState(StateIdle)
}

// setState performs one guarded transition. Callers hold c.mu, which
// makes the state write and its notification atomic with respect to any
// other transition.
func (c *Controller) setState(s State) {
	c.state = s
	c.events.StateChanged(s)
}

// nopSink is the sink used when no front end is attached.
type nopSink struct{}

func (nopSink) StateChanged(State) {}
func (nopSink) TranscriptionDone(string) {}
func (nopSink) TranscriptionError(string) {}
func (nopSink) StatusMessage(string) {}
