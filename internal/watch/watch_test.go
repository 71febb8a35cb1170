package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestFile_CallsHandlerOnStartAndChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "kipple.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\n"), 0644))

	calls := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- File(ctx, path, 20*time.Millisecond, zaptest.NewLogger(t), func(context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called on start")
	}

	// Unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("x"), 0644))
	select {
	case <-calls:
		t.Fatal("handler called for unrelated file")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nrandom_seed: 9\n"), 0644))
	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called after change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestFile_HandlerErrorsDoNotStopWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "kipple.yml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	calls := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- File(ctx, path, 20*time.Millisecond, nil, func(context.Context) error {
			calls <- struct{}{}
			return errors.New("broken config")
		})
	}()

	<-calls
	require.NoError(t, os.WriteFile(path, []byte("b"), 0644))
	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called after a failed run")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestFile_MissingDirectory(t *testing.T) {
	err := File(context.Background(), "/nonexistent/dir/kipple.yml", 0, nil, func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
