package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
)

const debounceInterval = 500 * time.Millisecond

// Notifier receives a signal after the store file changes on disk.
type Notifier interface {
	TaskStoreUpdated()
}

// Watcher reports external modifications of the task store. It watches the
// containing directory rather than the file itself so changes are picked up
// even when the store does not exist yet or is replaced by rename, and it
// debounces event bursts from atomic writes.
type Watcher struct {
	store    *Store
	notifier Notifier
	log      *logging.Logger
}

// NewWatcher creates a watcher over the store that signals notifier.
func NewWatcher(store *Store, notifier Notifier, log *logging.Logger) *Watcher {
	if log == nil {
		log = logging.NewNop()
	}
	return &Watcher{store: store, notifier: notifier, log: log}
}

// Run watches the store until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create store watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.store.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.log.Info("watching task store", zap.String("path", w.store.Path()))

	name := filepath.Base(w.store.Path())
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			// Debounce: reset the timer on each event.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, func() {
				w.log.Debug("task store changed", zap.String("op", event.Op.String()))
				if w.notifier != nil {
					w.notifier.TaskStoreUpdated()
				}
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("task store watcher error", zap.Error(err))
		}
	}
}
