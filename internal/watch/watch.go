package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches the burst of events editors emit on a single save.
const DefaultDebounce = 250 * time.Millisecond

// Handler is called once when watching starts and again after every settled
// change to the watched file.
type Handler func(ctx context.Context) error

// File calls handler for path now and after each change until ctx is done.
//
// The parent directory is watched rather than the file itself, so editors
// that save by renaming a temp file over the original keep triggering
// events. Handler errors are logged and do not stop the watch.
func File(ctx context.Context, path string, debounce time.Duration, log *zap.Logger, handler Handler) error {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	log.Debug("watching file", zap.String("path", abs))

	run := func() {
		if err := handler(ctx); err != nil {
			log.Warn("handler failed", zap.String("path", abs), zap.Error(err))
		}
	}
	run()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("file changed", zap.String("path", abs), zap.String("op", event.Op.String()))
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			run()
		}
	}
}
