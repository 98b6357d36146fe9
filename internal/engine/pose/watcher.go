package pose

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/logger"
)

// ReloadDebounce is how long the watcher waits for writes to settle.
const ReloadDebounce = 200 * time.Millisecond

// WatchConstraints watches a constraint file and sends each valid reload on
// out until ctx is cancelled. The parent directory is watched so editors that
// replace the file on save are followed. Invalid files are logged and skipped;
// the previous table stays active.
//
// The receiver applies the table with Controller.SetConstraints on its own
// goroutine.
func WatchConstraints(ctx context.Context, path string, out chan<- Table) error {
	log := logger.Named("constraints")

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	log.Info("watching constraint table", zap.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Debug("constraint watcher stopped")
			return nil

		case <-fire:
			fire = nil
			t, err := LoadConstraints(abs)
			if err != nil {
				log.Warn("constraint reload rejected", zap.Error(err))
				continue
			}
			select {
			case out <- t:
				log.Info("constraint table reloaded", zap.Int("entries", len(t)))
			case <-ctx.Done():
				return nil
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(ReloadDebounce)
			} else {
				timer.Reset(ReloadDebounce)
			}
			fire = timer.C

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("constraint watcher error", zap.Error(werr))
		}
	}
}
