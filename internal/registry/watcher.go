package registry

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/KNIGHT-ASK/quantum-transpiler/internal/device"
)

// #region load-catalog

// LoadCatalog registers every device file in a catalog directory.
func (r *Registry) LoadCatalog(dir string) (int, error) {
	devices, err := device.LoadDir(dir)
	if err != nil {
		return 0, err
	}
	for _, d := range devices {
		r.Register(d)
	}
	return len(devices), nil
}

// #endregion

// #region watch

// Watch re-registers device files as they are created or rewritten in the
// catalog directory, until the context is cancelled. A file that fails to
// parse is logged and skipped; the registry keeps its previous entry.
func (r *Registry) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			ext := filepath.Ext(event.Name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			d, err := device.LoadFile(event.Name)
			if err != nil {
				log.Printf("[REGISTRY] reload %s failed: %v", filepath.Base(event.Name), err)
				continue
			}
			r.Register(d)
			log.Printf("[REGISTRY] reloaded device %s", d.Name())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[REGISTRY] watcher error: %v", err)
		}
	}
}

// #endregion
