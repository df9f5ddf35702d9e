package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// StartWatcher applies the Lego Protocol document at path whenever it is
// written, so formations can be driven by dropping JSON into a file. The
// parent directory is watched because most editors replace the file on
// save. An existing file is applied immediately.
func (a *App) StartWatcher(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("app: watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("app: watch %s: %w", dir, err)
	}

	if data, err := os.ReadFile(path); err == nil {
		a.ApplyJSON(string(data))
	}

	abs, _ := filepath.Abs(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				evAbs, _ := filepath.Abs(ev.Name)
				if evAbs != abs || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					a.log.Warnf("app: watcher read: %v", err)
					continue
				}
				a.log.Infof("app: applying layout from %s", path)
				a.ApplyJSON(string(data))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				a.log.Warnf("app: watcher: %v", err)
			}
		}
	}()

	a.log.Infof("app: watching %s for layout changes", path)
	return nil
}
