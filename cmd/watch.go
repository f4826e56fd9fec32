package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Changes arriving within this interval trigger a single re-export.
const watchDebounce = 250 * time.Millisecond

// Extensions of files whose modification triggers a re-export.
var watchedExtensions = map[string]struct{}{
	".obj":  {},
	".mtl":  {},
	".yaml": {},
	".yml":  {},
}

// Watch the folder containing sceneFile and invoke fn each time a scene
// related file changes. Blocks until the process receives an interrupt.
func watchScene(sceneFile string, fn func() error) error {
	if strings.HasPrefix(sceneFile, "http://") || strings.HasPrefix(sceneFile, "https://") {
		return errors.New("remote scenes cannot be watched")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace files instead of writing them in place so the
	// parent folder is watched instead of the file itself.
	dir := filepath.Dir(sceneFile)
	if err = watcher.Add(dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef(`watching "%s" for changes; press ctrl+c to exit`, dir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Notice("stopped watching for changes")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !triggersExport(event) {
				continue
			}
			logger.Debugf("detected change: %s", event)
			pending = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warningf("watcher error: %v", err)
		case <-pending:
			pending = nil
			if err := fn(); err != nil {
				logger.Error(err)
			}
		}
	}
}

func triggersExport(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	_, watched := watchedExtensions[strings.ToLower(filepath.Ext(event.Name))]
	return watched
}
