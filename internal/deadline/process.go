// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deadline

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// handle is a started child process that can be awaited or killed.
type handle interface {
	// Done delivers the process exit result exactly once.
	Done() <-chan error

	// Kill forcibly terminates the process. The pending Done send still
	// fires afterwards, so the child is always reaped.
	Kill() error
}

// starter abstracts process launch for testing.
type starter interface {
	Start(bin string, args []string, stdout io.Writer) (handle, error)
}

// osStarter is the production starter backed by os/exec.
type osStarter struct{}

func (osStarter) Start(bin string, args []string, stdout io.Writer) (handle, error) {
	cmd := exec.Command(bin, args...)
	cmd.Stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", bin, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	return &osHandle{cmd: cmd, done: done}, nil
}

type osHandle struct {
	cmd  *exec.Cmd
	done chan error
}

func (h *osHandle) Done() <-chan error { return h.done }

func (h *osHandle) Kill() error { return h.cmd.Process.Kill() }

// ProcessCaller runs external work in a child OS process joined with a
// deadline. Kill on expiry reclaims the call no matter how the work
// misbehaves: a child blocked in native I/O dies with its process.
type ProcessCaller struct {
	// Bin is the binary to execute, typically the news-analyst binary
	// itself re-invoked with a probe subcommand.
	Bin string

	start starter
}

// NewProcessCaller returns a caller that launches bin for each call.
func NewProcessCaller(bin string) *ProcessCaller {
	return &ProcessCaller{Bin: bin, start: osStarter{}}
}

// Call launches the binary with args, waits up to timeout, and returns the
// child's stdout. On expiry the child is killed and reaped before Call
// returns a Timeout outcome. A non-zero exit is a call error.
func (p *ProcessCaller) Call(timeout time.Duration, args ...string) Outcome[[]byte] {
	var out bytes.Buffer

	h, err := p.start.Start(p.Bin, args, &out)
	if err != nil {
		return Outcome[[]byte]{Status: StatusError, Err: err}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-h.Done():
		if err != nil {
			return Outcome[[]byte]{Status: StatusError, Err: fmt.Errorf("probe process: %w", err)}
		}
		return Outcome[[]byte]{Status: StatusOK, Value: out.Bytes()}
	case <-timer.C:
	}

	if err := h.Kill(); err != nil {
		return Outcome[[]byte]{Status: StatusTimeout, Err: fmt.Errorf("killing expired probe: %w", err)}
	}
	// Reap the killed child so no zombie outlives the call.
	<-h.Done()
	return Outcome[[]byte]{Status: StatusTimeout}
}
