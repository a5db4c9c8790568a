package quotes

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 250 * time.Millisecond

// Watch reloads the bank whenever the quote file is written, created or
// renamed into place. It watches the parent directory so editors that
// replace the file atomically are picked up. Blocks until ctx is done.
func (p *Provider) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(p.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				reload = time.After(reloadDebounce)
			}
		case <-reload:
			reload = nil
			if _, err := p.Reload(); err != nil {
				p.log.Errorw("quotes_reload_failed", "path", p.path, "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.log.Warnw("quotes_watch_error", "path", p.path, "err", err)
		}
	}
}
