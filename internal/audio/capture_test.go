package audio

import (
	"testing"
)

// newCapture initializes the audio subsystem, skipping on hosts without
// a usable backend (headless CI).
func newCapture(t *testing.T) *Capture {
	t.Helper()
	c, err := NewCapture()
	if err != nil {
		t.Skipf("audio subsystem unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return c
}

func TestCaptureNotRecordingByDefault(t *testing.T) {
	c := newCapture(t)

	if c.IsRecording() {
		t.Error("IsRecording() should be false after creation")
	}
}

func TestStopSessionWithoutStart(t *testing.T) {
	c := newCapture(t)

	path, err := c.StopSession()
	if err != nil {
		t.Fatalf("StopSession() error = %v", err)
	}
	if path != "" {
		t.Errorf("StopSession() without a session = %q, want empty path", path)
	}
}

func TestStartSessionUnknownDevice(t *testing.T) {
	c := newCapture(t)

	err := c.StartSession(99999, 1, 16000)
	if err == nil {
		c.StopSession()
		t.Fatal("StartSession() with bogus device index should return error")
	}
	if c.IsRecording() {
		t.Error("IsRecording() should be false after failed start")
	}
}

func TestListDevices(t *testing.T) {
	c := newCapture(t)

	devices, err := c.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}

	// No devices is a valid outcome; entries that exist must be sane.
	for _, d := range devices {
		if d.Channels <= 0 {
			t.Errorf("device %d has %d input channels, want > 0", d.ID, d.Channels)
		}
		if d.SampleRate <= 0 {
			t.Errorf("device %d has sample rate %d, want > 0", d.ID, d.SampleRate)
		}
	}
}
