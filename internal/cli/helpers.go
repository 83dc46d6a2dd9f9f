package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/quiver/internal/logging"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/validate"
)

// Exit codes of the quiver binary.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitRejected = 2 // invalid input or syntax error
	ExitNoResult = 3 // timeout or crashed worker
	ExitSandbox  = 4 // worker could not be started
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	once   sync.Once
	sigCh  chan os.Signal
	mu     sync.Mutex
	sigVal os.Signal
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel, sigCh: make(chan os.Signal, 1)}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Done():
		}
		sc.once.Do(func() { signal.Stop(sc.sigCh) })
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger. Debug wins over level.
func NewLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	var syntax *domain.SyntaxError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrInvalidInput), errors.As(err, &syntax),
		errors.Is(err, validate.ErrInputTooLarge), errors.Is(err, validate.ErrInvalidUTF8):
		return ExitRejected
	case errors.Is(err, domain.ErrSandbox):
		return ExitSandbox
	case errors.Is(err, domain.ErrNoResult):
		return ExitNoResult
	}
	return ExitFailure
}
