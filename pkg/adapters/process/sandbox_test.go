package process_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/adapters/process"
	"github.com/aretw0/quiver/pkg/compiler"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/validate"
)

const (
	envMode    = "QUIVER_TEST_WORKER_MODE"
	envPIDFile = "QUIVER_TEST_WORKER_PID_FILE"
)

// TestMain lets the test binary act as its own sandbox worker.
func TestMain(m *testing.M) {
	process.ServeIfWorker(func(r io.Reader, w io.Writer) error {
		switch os.Getenv(envMode) {
		case "hang":
			if path := os.Getenv(envPIDFile); path != "" {
				if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
					return err
				}
			}
			time.Sleep(time.Hour)
		case "noisy":
			fmt.Fprint(os.Stderr, strings.Repeat("e", 1<<20))
			os.Exit(3)
		case "crash":
			fmt.Fprintln(os.Stderr, "worker exploded")
			os.Exit(3)
		case "garbage":
			_, err := io.WriteString(w, "not json")
			return err
		case "env":
			_, err := fmt.Fprintf(w, `{"id":%q}`, os.Getenv(process.EnvMemoryLimit)+"/"+os.Getenv("GOMAXPROCS"))
			return err
		}
		return compiler.Serve(r, w)
	})
	os.Exit(m.Run())
}

func newSandbox(t *testing.T, opts ...process.Option) *process.Sandbox {
	t.Helper()
	sb, err := process.NewSandbox(opts...)
	require.NoError(t, err)
	return sb
}

func request(expr string) domain.CompileRequest {
	return domain.CompileRequest{ID: "req-1", Expression: expr, Variables: compiler.Variables}
}

func TestSandbox_Compiles(t *testing.T) {
	reply, err := newSandbox(t).Run(context.Background(), request("x + y"), 10*time.Second)
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "req-1", reply.ID)
	assert.Nil(t, reply.Error)
	assert.NotEmpty(t, reply.Expr)
	assert.NotEmpty(t, reply.Program)
}

func TestSandbox_SyntaxErrorReply(t *testing.T) {
	reply, err := newSandbox(t).Run(context.Background(), request("x***y"), 10*time.Second)
	require.NoError(t, err)
	require.NotNil(t, reply.Error)
	assert.Equal(t, domain.ReplySyntax, reply.Error.Kind)
}

func TestSandbox_TimeoutKillsWorker(t *testing.T) {
	sb := newSandbox(t, process.WithEnv(envMode+"=hang"))

	start := time.Now()
	reply, err := sb.Run(context.Background(), request("x"), 200*time.Millisecond)
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.ErrorIs(t, err, domain.ErrNoResult)
	assert.Less(t, time.Since(start), 5*time.Second, "worker must be killed, not awaited")
}

func TestSandbox_ContextCancel(t *testing.T) {
	sb := newSandbox(t, process.WithEnv(envMode+"=hang"))
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	reply, err := sb.Run(ctx, request("x"), time.Minute)
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrCanceled)
}

func TestSandbox_Crash(t *testing.T) {
	reply, err := newSandbox(t, process.WithEnv(envMode+"=crash")).
		Run(context.Background(), request("x"), 10*time.Second)
	assert.Nil(t, reply)
	require.ErrorIs(t, err, domain.ErrWorkerCrashed)
	assert.Contains(t, err.Error(), "worker exploded")
}

func TestSandbox_GarbageReply(t *testing.T) {
	_, err := newSandbox(t, process.WithEnv(envMode+"=garbage")).
		Run(context.Background(), request("x"), 10*time.Second)
	assert.ErrorIs(t, err, domain.ErrWorkerCrashed)
}

func TestSandbox_ReplyTooLarge(t *testing.T) {
	_, err := newSandbox(t, process.WithMaxReplySize(8)).
		Run(context.Background(), request("x + y"), 10*time.Second)
	require.ErrorIs(t, err, domain.ErrWorkerCrashed)
	assert.Contains(t, err.Error(), "exceeds 8 bytes")
}

func TestSandbox_StderrBounded(t *testing.T) {
	_, err := newSandbox(t, process.WithEnv(envMode+"=noisy")).
		Run(context.Background(), request("x"), 10*time.Second)
	require.ErrorIs(t, err, domain.ErrWorkerCrashed)
	assert.Less(t, len(err.Error()), 32<<10)
}

func TestSandbox_WorkerEnvironment(t *testing.T) {
	sb := newSandbox(t, process.WithEnv(envMode+"=env"), process.WithMemoryLimit(1<<20))
	_, err := sb.Run(context.Background(), request("x"), 10*time.Second)
	// The env worker echoes its limits as the reply ID.
	require.ErrorIs(t, err, domain.ErrWorkerCrashed)
	assert.Contains(t, err.Error(), `"1048576/1"`)
}

func TestSandbox_StartFailure(t *testing.T) {
	sb := newSandbox(t, process.WithCommand("/nonexistent/quiver-worker"))
	_, err := sb.Run(context.Background(), request("x"), time.Second)
	assert.ErrorIs(t, err, domain.ErrSandbox)
}

func TestSandbox_AlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newSandbox(t).Run(ctx, request("x"), time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrCanceled, "no worker was started")
}

func TestCompiler_PathologicalTower(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a worker that runs until killed")
	}
	c := compiler.New(newSandbox(t))
	text, err := validate.Validate("9**9**9**9**9**9")
	require.NoError(t, err)

	start := time.Now()
	res, err := c.Compile(context.Background(), text, compiler.WithTimeout(time.Second))
	assert.NoError(t, err)
	assert.Nil(t, res)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCompiler_EndToEnd(t *testing.T) {
	c := compiler.New(newSandbox(t))
	text, err := validate.Validate("x*y - sin(x)")
	require.NoError(t, err)

	res, err := c.Compile(context.Background(), text)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "-sin(x) + x*y", res.Expr.String())

	v, err := res.Func.Eval(2, 3)
	require.NoError(t, err)
	assert.InDelta(t, 6-0.9092974268256817, v, 1e-12)
}
