package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads path whenever it is written or replaced and hands the new
// file to onChange. A file that fails to parse is logged and skipped; the
// previous values stay active. Runs until ctx is cancelled.
//
// The parent directory is watched rather than the file itself: editors that
// save by renaming a temp file over path would otherwise drop the watch.
func Watch(ctx context.Context, path string, log *zap.Logger, onChange func(File)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	log.Info("config_watch", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// Remove/Rename leave nothing to read; the Create that follows a
			// rename-save carries the new content.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			f, err := LoadFile(path)
			if err != nil {
				log.Warn("config_reload_failed", zap.String("path", path), zap.Error(err))
				continue
			}
			log.Info("config_reloaded", zap.String("path", path))
			onChange(f)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config_watch_error", zap.Error(err))
		}
	}
}
