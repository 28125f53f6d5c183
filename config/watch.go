package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"istat/logging"
	"istat/theme"
)

// Watcher reloads the theme when any file of the configuration changes.
type Watcher struct {
	base     string
	files    map[string]bool
	fsw      *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher watches the directories holding cfg's files. Editors replace
// files on save, so the directory is watched rather than the file.
func NewWatcher(cfg *Config) (*Watcher, error) {
	if len(cfg.files) == 0 {
		return nil, fmt.Errorf("config was not loaded from disk")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		base:     trimExt(cfg.files[0]),
		files:    map[string]bool{},
		fsw:      fsw,
		debounce: 200 * time.Millisecond,
	}
	dirs := map[string]bool{}
	for _, f := range cfg.files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch directory %s: %w", d, err)
		}
	}
	return w, nil
}

// Run calls apply with the freshly loaded theme after each burst of changes.
// Configs that fail to load are logged and ignored. Run returns when ctx is
// done.
func (w *Watcher) Run(ctx context.Context, apply func(theme.Theme)) {
	defer w.fsw.Close()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.files[ev.Name] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			cfg, err := Load(w.base)
			if err != nil {
				logging.WarnLog.Printf("config reload: %v", err)
				continue
			}
			logging.InfoLog.Print("config changed on disk, reloading theme")
			apply(cfg.Theme)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.WarnLog.Printf("config watcher: %v", err)
		}
	}
}
