package process

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Options(t *testing.T) {
	cfg := Config{
		Command:      "/usr/local/bin/quiver",
		Args:         []string{"worker"},
		Environment:  map[string]string{"B": "2", "A": "1"},
		MemoryLimit:  1 << 20,
		MaxReplySize: 1024,
	}
	sb, err := NewSandbox(cfg.Options()...)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/quiver", sb.command)
	assert.Equal(t, []string{"worker"}, sb.args)
	assert.Equal(t, []string{"A=1", "B=2"}, sb.env)
	assert.Equal(t, int64(1<<20), sb.memoryLimit)
	assert.Equal(t, int64(1024), sb.maxReply)
}

func TestConfig_ZeroKeepsDefaults(t *testing.T) {
	sb, err := NewSandbox(Config{}.Options()...)
	require.NoError(t, err)
	assert.NotEmpty(t, sb.command)
	assert.Equal(t, DefaultMemoryLimit, sb.memoryLimit)
	assert.Equal(t, DefaultMaxReplySize, sb.maxReply)
}

func TestLimitedBuffer(t *testing.T) {
	b := &limitedBuffer{limit: 4}
	n, err := b.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.True(t, b.truncated)
	assert.Equal(t, "abcd", string(b.Bytes()))
}

func TestLimitedBuffer_Copy(t *testing.T) {
	b := &limitedBuffer{limit: 4}
	_, isReaderFrom := any(b).(io.ReaderFrom)
	assert.False(t, isReaderFrom, "io.Copy must go through Write")

	// LimitReader has no WriteTo, so io.Copy would use ReadFrom if it existed.
	n, err := io.Copy(b, io.LimitReader(strings.NewReader(strings.Repeat("x", 100)), 100))
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)
	assert.True(t, b.truncated)
	assert.Len(t, b.Bytes(), 4)
}
