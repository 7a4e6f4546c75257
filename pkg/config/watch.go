package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a watch callback fires.
const DefaultDebounce = 500 * time.Millisecond

// Watch watches the documents at paths until ctx is done. Writes, creates
// and renames invalidate the affected cache entries; fn is called with the
// changed paths once events have been quiet for the debounce period.
// Directories are watched rather than files so editors that replace files
// are still observed.
func (l *Loader) Watch(ctx context.Context, paths []string, fn func(changed []string)) error {
	return l.watch(ctx, paths, DefaultDebounce, fn)
}

func (l *Loader) watch(ctx context.Context, paths []string, debounce time.Duration, fn func([]string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, path := range paths {
		id, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", path, err)
		}
		watched[id] = true
		dir := filepath.Dir(id)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	z := l.logger.Zerolog()
	z.Info().Int("paths", len(watched)).Msg("watching documents")

	var (
		mu      sync.Mutex
		pending = make(map[string]bool)
		timer   *time.Timer
	)
	flush := func() {
		mu.Lock()
		changed := make([]string, 0, len(pending))
		for id := range pending {
			changed = append(changed, id)
		}
		pending = make(map[string]bool)
		mu.Unlock()

		if len(changed) == 0 || ctx.Err() != nil {
			return
		}
		sort.Strings(changed)
		fn(changed)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			id, err := filepath.Abs(event.Name)
			if err != nil || !watched[id] {
				continue
			}

			z.Debug().
				Str("path", id).
				Str("op", event.Op.String()).
				Msg("document changed")

			l.Invalidate(id)

			mu.Lock()
			pending[id] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, flush)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			z.Error().Err(err).Msg("watcher error")
		}
	}
}
