// Package capture records from the microphone by running an external
// recorder that writes an audio container to stdout.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

const (
	defaultChunkSize = 16 * 1024
	// stopGrace is how long the recorder gets to finalize its container
	// after an interrupt before it is killed.
	stopGrace = 3 * time.Second
)

// Config holds the recorder command configuration
type Config struct {
	Command   string
	Args      []string
	ChunkSize int
	Logger    *slog.Logger
}

// ExecDevice implements ports.CaptureDevice with a child process.
type ExecDevice struct {
	cfg    Config
	logger *slog.Logger
}

var _ ports.CaptureDevice = (*ExecDevice)(nil)

// NewExecDevice creates a capture device
func NewExecDevice(cfg Config) *ExecDevice {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecDevice{cfg: cfg, logger: logger.With("component", "capture", "command", cfg.Command)}
}

// Open starts the recorder. A recorder that cannot be started is reported
// as a denied microphone.
func (d *ExecDevice) Open(ctx context.Context) (ports.CaptureStream, error) {
	if d.cfg.Command == "" {
		return nil, fmt.Errorf("%w: no capture command configured", apperrors.ErrMicPermissionDenied)
	}

	// The process outlives the request that opened it.
	cmd := exec.Command(d.cfg.Command, d.cfg.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMicPermissionDenied, err)
	}
	if err := cmd.Start(); err != nil {
		d.logger.WarnContext(ctx, "recorder failed to start", "error", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMicPermissionDenied, err)
	}
	d.logger.DebugContext(ctx, "recorder started", "pid", cmd.Process.Pid)

	s := &execStream{
		cmd:     cmd,
		chunks:  make(chan []byte, 64),
		exited:  make(chan struct{}),
		logger:  d.logger,
		bufSize: d.cfg.ChunkSize,
	}
	go s.pump(stdout)
	return s, nil
}

type execStream struct {
	cmd     *exec.Cmd
	chunks  chan []byte
	exited  chan struct{}
	logger  *slog.Logger
	bufSize int

	stopOnce sync.Once
	mu       sync.Mutex
	waitErr  error
}

func (s *execStream) Chunks() <-chan []byte {
	return s.chunks
}

// pump forwards stdout until EOF, then reaps the process.
func (s *execStream) pump(stdout io.Reader) {
	buf := make([]byte, s.bufSize)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.chunks <- chunk
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				s.logger.Warn("recorder output read failed", "error", err)
			}
			break
		}
	}
	close(s.chunks)

	err := s.cmd.Wait()
	s.mu.Lock()
	s.waitErr = err
	s.mu.Unlock()
	close(s.exited)
}

// Stop interrupts the recorder so it can finish the container, kills it if
// it does not exit in time, and waits for it to be reaped. Only a recorder
// that had already failed on its own reports an error.
func (s *execStream) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		select {
		case <-s.exited:
			s.mu.Lock()
			err = s.waitErr
			s.mu.Unlock()
			if err != nil {
				s.logger.Warn("recorder exited before stop", "error", err)
			}
			return
		default:
		}

		if signalErr := s.cmd.Process.Signal(os.Interrupt); signalErr != nil {
			_ = s.cmd.Process.Kill()
		}
		select {
		case <-s.exited:
		case <-time.After(stopGrace):
			s.logger.Warn("recorder ignored interrupt, killing")
			_ = s.cmd.Process.Kill()
			<-s.exited
		}
	})
	return err
}
