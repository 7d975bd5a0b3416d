// Package watch recomposes a directory of images whenever its contents change.
//
// It stands in for a live preview: a Watcher observes a directory tree with
// fsnotify, adding one watch per non-hidden folder since fsnotify does not
// recurse. It debounces bursts of events (editors and file managers often emit
// several per save) and then hands the current, ordered list of images to a
// callback.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/ironsheep/image-stitch/internal/imaging"
)

// DefaultDelay is the debounce window applied to file events.
const DefaultDelay = 300 * time.Millisecond

// Handler receives the image paths found in the watched directory, in the
// order ExpandPaths returns them, plus the paths whose events triggered the run.
type Handler func(ctx context.Context, images, changed []string)

// Watcher monitors a directory tree for image changes.
type Watcher struct {
	dir     string
	delay   time.Duration
	logger  *log.Logger
	watcher *fsnotify.Watcher

	// dirs holds every directory currently added to watcher. Only the Run
	// goroutine touches it after New returns.
	dirs map[string]bool
}

// New creates a watcher for dir and every non-hidden directory below it.
// A non-positive delay selects DefaultDelay.
func New(dir string, delay time.Duration, logger *log.Logger) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = log.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		dir:     dir,
		delay:   delay,
		logger:  logger,
		watcher: fsWatcher,
		dirs:    map[string]bool{},
	}
	if err := w.addTree(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches root and its non-hidden subdirectories, matching the
// entries imaging.ExpandPaths descends into.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch folder %s: %w", path, err)
		}
		w.dirs[path] = true
		return nil
	})
}

// Run calls fn once for the initial contents of the directory and again after
// every debounced burst of image events. It blocks until ctx is cancelled or
// the underlying watcher fails, and always closes the watcher before returning.
//
// fn runs on the Run goroutine, so a slow handler delays (and coalesces) the
// next run instead of overlapping with it.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	defer w.watcher.Close()

	w.logger.Info("Watching folder", "dir", w.dir)
	w.dispatch(ctx, fn, nil)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		changed = map[string]bool{}
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

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.track(event) {
				continue
			}
			w.logger.Debug("File event", "op", event.Op.String(), "path", event.Name)
			changed[event.Name] = true

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.delay)
			fire = timer.C

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			clear(changed)
			w.dispatch(ctx, fn, paths)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "err", err)
		}
	}
}

// dispatch rescans the directory and calls fn if it holds any image.
func (w *Watcher) dispatch(ctx context.Context, fn Handler, changed []string) {
	images, err := imaging.ExpandPaths([]string{w.dir})
	if errors.Is(err, imaging.ErrNoImages) {
		w.logger.Debug("No images to compose", "dir", w.dir)
		return
	}
	if err != nil {
		w.logger.Error("Failed to scan folder", "dir", w.dir, "err", err)
		return
	}
	fn(ctx, images, changed)
}

// track keeps the watch list in step with directories appearing and
// disappearing, and reports whether event should trigger a run.
func (w *Watcher) track(event fsnotify.Event) bool {
	if hidden(event.Name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// Files created before the directory was added produce no events,
			// so the run that follows rescans it.
			if err := w.addTree(event.Name); err != nil {
				w.logger.Error("Failed to watch new folder", "dir", event.Name, "err", err)
			}
			return true
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.dirs[event.Name] {
			prefix := event.Name + string(filepath.Separator)
			for d := range w.dirs {
				if d == event.Name || strings.HasPrefix(d, prefix) {
					_ = w.watcher.Remove(d)
					delete(w.dirs, d)
				}
			}
			return true
		}
	}

	return relevant(event)
}

// hidden reports whether the base name of path starts with a dot.
func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// relevant reports whether event concerns a visible image file.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if hidden(event.Name) {
		return false
	}
	return imaging.IsImageFile(event.Name)
}
