//go:build unix

package process_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/adapters/process"
	"github.com/aretw0/quiver/pkg/domain"
)

func TestSandbox_TimeoutReapsWorker(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "worker.pid")
	sb := newSandbox(t, process.WithEnv(envMode+"=hang", envPIDFile+"="+pidFile))

	_, err := sb.Run(context.Background(), request("x"), time.Second)
	require.ErrorIs(t, err, domain.ErrTimeout)

	data, err := os.ReadFile(pidFile)
	require.NoError(t, err, "worker never started")
	pid, err := strconv.Atoi(string(data))
	require.NoError(t, err)

	assert.ErrorIs(t, syscall.Kill(pid, 0), syscall.ESRCH, "worker %d still exists", pid)
}
