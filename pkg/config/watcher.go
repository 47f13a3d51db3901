package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// Watcher hot-reloads a Manager's configuration file so a long-lived
// CLI-driven session (e.g. a wrapping watch-mode script driving repeated
// batch runs) picks up edits to the YAML config file without restarting.
// Every reload re-runs the full defaults/file/env/flags pipeline and
// re-validates before swapping the active config, so a bad edit is logged
// and ignored rather than corrupting the next batch run.
type Watcher struct {
	manager *Manager
	watcher *fsnotify.Watcher
	path    string
	flags   *pflag.FlagSet
	debug   bool
	logger  zerolog.Logger
	done    chan struct{}
}

// WatchFile starts watching path for writes and reloads manager through
// DefaultSources whenever it changes. Returns (nil, nil) if path is empty,
// since there is nothing to watch.
func WatchFile(manager *Manager, path string, flags *pflag.FlagSet, debug bool, logger zerolog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching config file %s: %w", path, err)
	}

	w := &Watcher{
		manager: manager,
		watcher: fw,
		path:    path,
		flags:   flags,
		debug:   debug,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.watcher.Close()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Editors often replace a file on save (write to a temp file,
			// rename over the original), which fsnotify reports as Create
			// or Rename on the watched path rather than Write.
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	sources := DefaultSources(w.path, w.flags, w.debug)
	if err := w.manager.LoadWithSources(sources); err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("config hot-reload rejected, keeping previous configuration")
		return
	}
	w.logger.Info().Str("path", w.path).Msg("configuration hot-reloaded")
}

// Close stops the watcher goroutine and releases the underlying fsnotify
// watch.
func (w *Watcher) Close() error {
	close(w.done)
	return nil
}
