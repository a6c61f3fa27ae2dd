package workflow

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// WatchStore watches a workflow store directory for external edits and
// invokes onChange whenever a workflow file is created, written, or
// removed. It runs until stop is closed; watcher errors are logged and
// do not terminate the loop.
func WatchStore(dir string, onChange func(), stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("workflow store watch error", "error", err)
			}
		}
	}()

	return nil
}
