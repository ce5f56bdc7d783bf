package app

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch runs once, then re-runs whenever the document or a script changes,
// until ctx is cancelled. Bursts of file events within
// the configured debounce window cause a single re-run. Run failures are
// logged and reported through OnRun; they do not stop watching.
func (app *Application) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	files, err := app.watchSet()
	if err != nil {
		return err
	}
	dirs := make(map[string]bool)
	for f := range files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		// Watch directories so editors that replace files on save are seen.
		if err := w.Add(dir); err != nil {
			return err
		}
		dirs[dir] = true
	}

	rerun := func() {
		if _, err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.logger.Error("run failed: %v", err)
		}
	}
	rerun()

	delay := app.config.Watch.Debounce.Std()
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !files[abs] {
				continue
			}
			app.logger.Debug("change detected: %s %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			app.logger.Warn("watch error: %v", err)

		case <-fire:
			fire = nil
			rerun()
		}
	}
}

// watchSet returns the absolute paths of every input file.
func (app *Application) watchSet() (map[string]bool, error) {
	paths := append([]string{app.config.Document}, app.config.Scripts...)

	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		set[abs] = true
	}
	return set, nil
}

func relevant(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
