package process

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
)

const (
	// EnvWorker marks a process as a sandbox worker.
	EnvWorker = "QUIVER_SANDBOX_WORKER"
	// EnvMemoryLimit carries the worker's soft memory limit in bytes.
	EnvMemoryLimit = "QUIVER_SANDBOX_MEMORY"
)

// ServeFunc answers one request read from r by writing to w.
type ServeFunc func(r io.Reader, w io.Writer) error

// IsWorker reports whether this process was started as a sandbox worker.
func IsWorker() bool { return os.Getenv(EnvWorker) == "1" }

// ServeIfWorker serves a single request on stdin/stdout and exits when the
// process is a sandbox worker. Otherwise it returns immediately.
func ServeIfWorker(serve ServeFunc) {
	if !IsWorker() {
		return
	}
	if v := os.Getenv(EnvMemoryLimit); v != "" {
		if limit, err := strconv.ParseInt(v, 10, 64); err == nil && limit > 0 {
			debug.SetMemoryLimit(limit)
		}
	}
	if err := serve(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	os.Exit(0)
}
