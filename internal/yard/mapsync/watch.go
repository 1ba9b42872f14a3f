package mapsync

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/yardtrack-io/yardtrack/pkg/log"
)

// WatchColorMap reloads the color map whenever the backing file changes,
// blocking until ctx is done. Editors that replace the file (rename + create)
// are handled by watching the parent directory.
func WatchColorMap(ctx context.Context, c *ColorMap, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger := log.WithName("colormap")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := c.LoadFile(path); err != nil {
				logger.Error(err, "Failed to reload color map", "path", path)
				continue
			}
			logger.Info("Color map reloaded", "path", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error(err, "Color map watcher error")
		}
	}
}
