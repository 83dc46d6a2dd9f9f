// Package process isolates compile work in a child process.
//
// The child is the running executable itself, re-executed with
// EnvWorker set. Programs and test binaries that use the sandbox call
// ServeIfWorker first thing in main (or TestMain).
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

const (
	// DefaultMemoryLimit is the soft heap limit applied inside the worker.
	DefaultMemoryLimit int64 = 512 << 20
	// DefaultMaxReplySize caps how much worker output is buffered.
	DefaultMaxReplySize int64 = 8 << 20

	stderrLimit = 16 << 10
	waitDelay   = time.Second
)

// Sandbox implements ports.Sandbox with one child process per request.
type Sandbox struct {
	command     string
	args        []string
	env         []string
	memoryLimit int64
	maxReply    int64
	logger      *slog.Logger
}

// Option configures the sandbox.
type Option func(*Sandbox)

// WithCommand overrides the worker executable. By default the sandbox
// re-executes os.Executable().
func WithCommand(command string, args ...string) Option {
	return func(s *Sandbox) {
		s.command = command
		s.args = args
	}
}

// WithEnv appends KEY=VALUE pairs to the worker environment.
func WithEnv(kv ...string) Option {
	return func(s *Sandbox) {
		s.env = append(s.env, kv...)
	}
}

// WithMemoryLimit sets the worker's soft memory limit in bytes.
// Zero or less disables it.
func WithMemoryLimit(bytes int64) Option {
	return func(s *Sandbox) {
		s.memoryLimit = bytes
	}
}

// WithMaxReplySize caps the reply size; larger replies count as crashes.
func WithMaxReplySize(bytes int64) Option {
	return func(s *Sandbox) {
		if bytes > 0 {
			s.maxReply = bytes
		}
	}
}

// WithLogger sets the logger used for worker lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sandbox) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSandbox creates a process sandbox.
func NewSandbox(opts ...Option) (*Sandbox, error) {
	s := &Sandbox{
		memoryLimit: DefaultMemoryLimit,
		maxReply:    DefaultMaxReplySize,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.command == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("%w: locate executable: %w", domain.ErrSandbox, err)
		}
		s.command = exe
	}
	return s, nil
}

type outcome struct {
	reply *domain.CompileReply
	err   error
}

// Run starts a worker for req and waits at most timeout for its reply.
func (s *Sandbox) Run(ctx context.Context, req domain.CompileRequest, timeout time.Duration) (*domain.CompileReply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", domain.ErrSandbox, err)
	}

	// Not CommandContext: termination is ours to decide, and must hit the group.
	cmd := exec.Command(s.command, s.args...)
	cmd.Env = append(os.Environ(), s.workerEnv()...)
	cmd.Stdin = bytes.NewReader(payload)
	stdout := &limitedBuffer{limit: s.maxReply}
	stderr := &limitedBuffer{limit: stderrLimit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	isolate(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start worker: %w", domain.ErrSandbox, err)
	}
	log := s.logger.With("id", req.ID, "pid", cmd.Process.Pid)
	log.Debug("worker started")

	// Single slot: the worker goroutine never blocks on send.
	done := make(chan outcome, 1)
	go func() {
		werr := cmd.Wait()
		done <- s.collect(req.ID, werr, stdout, stderr)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		log.Debug("worker finished", "duration", time.Since(start), "error", out.err)
		return out.reply, out.err
	case <-timer.C:
		s.terminate(cmd, done, log)
		log.Warn("worker timed out", "timeout", timeout)
		return nil, domain.ErrTimeout
	case <-ctx.Done():
		s.terminate(cmd, done, log)
		log.Debug("worker canceled", "cause", ctx.Err())
		return nil, fmt.Errorf("%w: %w", domain.ErrCanceled, ctx.Err())
	}
}

func (s *Sandbox) workerEnv() []string {
	env := []string{EnvWorker + "=1", "GOMAXPROCS=1"}
	if s.memoryLimit > 0 {
		env = append(env, EnvMemoryLimit+"="+strconv.FormatInt(s.memoryLimit, 10))
	}
	return append(env, s.env...)
}

// terminate kills the worker group and reaps it.
func (s *Sandbox) terminate(cmd *exec.Cmd, done <-chan outcome, log *slog.Logger) {
	if err := kill(cmd); err != nil {
		log.Error("failed to kill worker", "error", err)
	}
	<-done
}

func (s *Sandbox) collect(id string, werr error, stdout, stderr *limitedBuffer) outcome {
	if werr != nil {
		return outcome{err: fmt.Errorf("%w: %v: %s", domain.ErrWorkerCrashed, werr, bytes.TrimSpace(stderr.Bytes()))}
	}
	if stdout.truncated {
		return outcome{err: fmt.Errorf("%w: reply exceeds %d bytes", domain.ErrWorkerCrashed, stdout.limit)}
	}
	var reply domain.CompileReply
	if err := json.Unmarshal(stdout.Bytes(), &reply); err != nil {
		return outcome{err: fmt.Errorf("%w: decode reply: %v", domain.ErrWorkerCrashed, err)}
	}
	if reply.ID != id {
		return outcome{err: fmt.Errorf("%w: reply for %q, want %q", domain.ErrWorkerCrashed, reply.ID, id)}
	}
	return outcome{reply: &reply}
}

// limitedBuffer keeps the first limit bytes and discards the rest.
// The buffer is a named field so io.Copy cannot bypass Write through ReadFrom.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	room := b.limit - int64(b.buf.Len())
	if int64(len(p)) > room {
		b.truncated = true
		if room > 0 {
			b.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte { return b.buf.Bytes() }

var _ ports.Sandbox = (*Sandbox)(nil)
