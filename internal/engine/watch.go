package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/reloquent/entitycheck/internal/entity"
	"github.com/reloquent/entitycheck/internal/lock"
)

// DefaultDebounce is how long Watch waits after the last change before re-running.
const DefaultDebounce = 300 * time.Millisecond

// Watch runs the pipeline once, then again whenever the schema file or an
// entity file changes, until ctx is cancelled. Bursts of events within the
// debounce window trigger a single run. onRun receives every run's outcome.
// The report is locked for the lifetime of the watch.
func (e *Engine) Watch(ctx context.Context, debounce time.Duration, onRun func(*Outcome, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	lockPath := lock.PathFor(e.Config.Report.Path)
	if err := lock.Acquire(lockPath); err != nil {
		return fmt.Errorf("locking report: %w", err)
	}
	defer lock.Release(lockPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range e.watchDirs() {
		if err := w.Add(dir); err != nil {
			e.Logger.Warn("Cannot watch directory", "dir", dir, "error", err)
			continue
		}
		e.Logger.Debug("Watching directory", "dir", dir)
	}

	onRun(e.Run(ctx))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !e.relevant(ev) {
				continue
			}
			e.Logger.Debug("Change detected", "path", ev.Name, "op", ev.Op.String())
			if ev.Has(fsnotify.Create) && e.Config.Entities.Recursive {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.Add(ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.Logger.Warn("Watcher error", "error", err)
		case <-fire:
			fire = nil
			onRun(e.Run(ctx))
		}
	}
}

// watchDirs returns the schema file's directory and the entity directory,
// including subdirectories when scanning recursively.
func (e *Engine) watchDirs() []string {
	cfg := e.Config
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	if !cfg.IsLive() {
		add(filepath.Dir(cfg.Schema.Path))
	}
	add(cfg.Entities.Dir)
	if cfg.Entities.Recursive {
		_ = filepath.WalkDir(cfg.Entities.Dir, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	return dirs
}

// relevant reports whether an event touches the schema file or an entity
// file. The report itself is ignored so writing it does not trigger a run.
func (e *Engine) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	cfg := e.Config
	name := filepath.Clean(ev.Name)
	if sameFile(name, cfg.Report.Path) {
		return false
	}
	if !cfg.IsLive() && sameFile(name, cfg.Schema.Path) {
		return true
	}
	ext := cfg.Entities.Extension
	if ext == "" {
		ext = entity.DefaultExtension
	}
	if strings.EqualFold(filepath.Ext(name), ext) {
		return within(name, cfg.Entities.Dir)
	}
	// A created or removed subdirectory changes the recursive file set.
	return cfg.Entities.Recursive && within(name, cfg.Entities.Dir) && filepath.Ext(name) == ""
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}

func within(path, dir string) bool {
	p, err1 := filepath.Abs(path)
	d, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(d, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
