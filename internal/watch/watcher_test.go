package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatch(t *testing.T, w *Watcher) (<-chan []string, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(_ context.Context, changed []string) {
			batches <- changed
		})
	}()
	return batches, cancel, done
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
		return nil
	}
}

func TestWatcher(t *testing.T) {
	t.Run("Debounced batch for matching files", func(t *testing.T) {
		dir := t.TempDir()
		w, err := New(Config{Debounce: 50 * time.Millisecond, Pattern: "*.rts"})
		require.NoError(t, err)
		require.NoError(t, w.Add(dir))

		batches, cancel, done := startWatch(t, w)
		path := filepath.Join(dir, "a.rts")
		for i := 0; i < 3; i++ {
			require.NoError(t, os.WriteFile(path, []byte("Strategy:\n"), 0o644))
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))

		assert.Equal(t, []string{path}, waitBatch(t, batches))

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	t.Run("Files added directly are always relevant", func(t *testing.T) {
		dir := t.TempDir()
		grammar := filepath.Join(dir, "realtest.lark")
		require.NoError(t, os.WriteFile(grammar, []byte("start: section*\n"), 0o644))

		w, err := New(Config{Debounce: 50 * time.Millisecond, Pattern: "*.rts"})
		require.NoError(t, err)
		require.NoError(t, w.Add(grammar))

		batches, cancel, done := startWatch(t, w)
		require.NoError(t, os.WriteFile(grammar, []byte("start: item*\n"), 0o644))
		assert.Equal(t, []string{grammar}, waitBatch(t, batches))

		cancel()
		<-done
	})

	t.Run("New subdirectories are watched", func(t *testing.T) {
		dir := t.TempDir()
		w, err := New(Config{Debounce: 50 * time.Millisecond, Pattern: "*.rts"})
		require.NoError(t, err)
		require.NoError(t, w.Add(dir))

		batches, cancel, done := startWatch(t, w)
		sub := filepath.Join(dir, "more")
		require.NoError(t, os.Mkdir(sub, 0o755))
		time.Sleep(100 * time.Millisecond)
		path := filepath.Join(sub, "b.rts")
		require.NoError(t, os.WriteFile(path, []byte("Data:\n"), 0o644))

		assert.Contains(t, waitBatch(t, batches), path)
		cancel()
		<-done
	})

	t.Run("Tiny debounce still delivers", func(t *testing.T) {
		dir := t.TempDir()
		w, err := New(Config{Debounce: time.Nanosecond, Pattern: "*.rts"})
		require.NoError(t, err)
		require.NoError(t, w.Add(dir))

		batches, cancel, done := startWatch(t, w)
		path := filepath.Join(dir, "c.rts")
		require.NoError(t, os.WriteFile(path, []byte("Scan:\n"), 0o644))
		assert.Contains(t, waitBatch(t, batches), path)

		cancel()
		<-done
	})

	t.Run("Stop ends the watch", func(t *testing.T) {
		w, err := New(Config{})
		require.NoError(t, err)
		require.NoError(t, w.Add(t.TempDir()))
		_, cancel, done := startWatch(t, w)
		defer cancel()

		w.Stop()
		w.Stop()
		assert.NoError(t, <-done)
	})

	t.Run("Missing path", func(t *testing.T) {
		w, err := New(Config{})
		require.NoError(t, err)
		defer w.Stop()
		assert.ErrorContains(t, w.Add(filepath.Join(t.TempDir(), "absent")), "failed to watch")
	})
}

func TestTakeSettled(t *testing.T) {
	w, err := New(Config{Debounce: time.Second})
	require.NoError(t, err)
	defer w.Stop()

	now := time.Now()
	w.pending["b"] = now.Add(-2 * time.Second)
	w.pending["a"] = now.Add(-time.Second)
	w.pending["fresh"] = now

	assert.Equal(t, []string{"a", "b"}, w.takeSettled(now))
	assert.Equal(t, []string{"fresh"}, w.takeSettled(now.Add(time.Second)))
	assert.Empty(t, w.takeSettled(now.Add(time.Hour)))
}
