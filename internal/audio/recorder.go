// Package audio captures microphone input through an external recorder
// process and yields an opaque base64-encoded payload. Capture failure is
// reported, never fatal: the text chat path must stay usable without a
// working microphone.
package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polyglotlabs/polyglot/internal/chat"
)

// Sentinel errors for recorder state misuse.
var (
	// ErrNoRecorder indicates no supported capture binary was found.
	ErrNoRecorder = errors.New("no audio recorder binary available")

	// ErrAlreadyRecording indicates Start was called while recording.
	ErrAlreadyRecording = errors.New("recording already in progress")

	// ErrNotRecording indicates Stop was called with no capture running.
	ErrNotRecording = errors.New("no recording in progress")

	// ErrEmptyCapture indicates the recorder produced no audio data.
	ErrEmptyCapture = errors.New("capture produced no audio data")
)

// stopGrace bounds how long Stop waits for the recorder process to
// finalize its output after the interrupt signal.
const stopGrace = 3 * time.Second

// recorderSpec describes one supported capture binary.
type recorderSpec struct {
	mimeType string
	args     func(device, outPath string) []string
}

// Known binaries in preference order. ffmpeg finalizes an Ogg/Opus stream
// on SIGINT; arecord writes WAV and stops cleanly on SIGINT too.
var specs = map[string]recorderSpec{
	"ffmpeg": {
		mimeType: "audio/ogg",
		args: func(device, outPath string) []string {
			if device == "" {
				device = "default"
			}
			return []string{
				"-hide_banner", "-loglevel", "error",
				"-f", "alsa", "-i", device,
				"-c:a", "libopus", "-f", "ogg",
				"-y", outPath,
			}
		},
	},
	"arecord": {
		mimeType: "audio/wav",
		args: func(device, outPath string) []string {
			args := []string{"-f", "cd", "-t", "wav"}
			if device != "" {
				args = append(args, "-D", device)
			}
			return append(args, outPath)
		},
	},
}

var detectOrder = []string{"ffmpeg", "arecord"}

// Detect returns the capture binary to use. preferred, when non-empty, must
// name a supported binary present on PATH; otherwise the known binaries are
// probed in preference order.
func Detect(preferred string) (string, error) {
	if preferred != "" {
		if _, ok := specs[filepath.Base(preferred)]; !ok {
			return "", fmt.Errorf("%w: unsupported recorder %q", ErrNoRecorder, preferred)
		}
		if _, err := exec.LookPath(preferred); err != nil {
			return "", fmt.Errorf("%w: %q not on PATH", ErrNoRecorder, preferred)
		}
		return preferred, nil
	}

	for _, name := range detectOrder {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", ErrNoRecorder
}

// Recorder drives one capture binary. A single capture may be in flight at
// a time; Start/Stop pairs are serialized by the UI.
type Recorder struct {
	binary string
	device string
	logger *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	outPath string
}

// NewRecorder creates a Recorder for a binary previously vetted by Detect.
func NewRecorder(binary, device string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{binary: binary, device: device, logger: logger}
}

// Recording reports whether a capture is in flight.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// Start begins capturing to a temp file. The capture runs until Stop.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return ErrAlreadyRecording
	}

	spec, ok := specs[filepath.Base(r.binary)]
	if !ok {
		return fmt.Errorf("%w: unsupported recorder %q", ErrNoRecorder, r.binary)
	}

	outPath := filepath.Join(os.TempDir(), "polyglot-capture-"+uuid.NewString())
	cmd := exec.Command(r.binary, spec.args(r.device, outPath)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting recorder %q: %w", r.binary, err)
	}

	r.cmd = cmd
	r.outPath = outPath
	r.logger.Debug("capture started", "binary", r.binary, "out", outPath)
	return nil
}

// Stop ends the capture and returns the recording as a base64 payload with
// its declared mime type. The temp file is always removed.
func (r *Recorder) Stop() (*chat.AudioPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return nil, ErrNotRecording
	}
	cmd, outPath := r.cmd, r.outPath
	r.cmd, r.outPath = nil, ""
	defer os.Remove(outPath)

	// Interrupt lets the recorder finalize its container; kill as a last
	// resort if it hangs.
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		_ = cmd.Process.Kill()
	}

	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()
	select {
	case err := <-waited:
		// Recorders commonly exit non-zero after SIGINT; a usable output
		// file decides success, not the exit status.
		if err != nil {
			r.logger.Debug("recorder exited non-zero after interrupt", "error", err)
		}
	case <-time.After(stopGrace):
		_ = cmd.Process.Kill()
		<-waited
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading capture: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyCapture
	}

	return &chat.AudioPayload{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: specs[filepath.Base(r.binary)].mimeType,
	}, nil
}
