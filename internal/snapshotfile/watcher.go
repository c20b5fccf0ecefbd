package snapshotfile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cultivatehq/cultivate/backend/internal/logging"
	"github.com/cultivatehq/cultivate/backend/internal/service"
)

const defaultDebounce = 300 * time.Millisecond

// ChangeFunc receives the freshly loaded request, or the error that
// prevented loading it.
type ChangeFunc func(req service.PathRequest, err error)

// Watcher reloads a single snapshot file whenever its content changes.
// The parent directory is watched so that editors replacing the file
// through a rename are picked up.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	pending  bool
	lastHash string
}

// NewWatcher prepares a watcher for path. A non-positive debounce uses the
// default delay.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		logger:   logging.Component(logger, "snapshot-watcher"),
	}, nil
}

// Run invokes onChange with the current content, then again after every
// change, until ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.reload(onChange)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.mu.Lock()
				w.pending = true
				w.mu.Unlock()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.mu.Lock()
			flush := w.pending
			w.pending = false
			w.mu.Unlock()
			if flush {
				w.reload(onChange)
			}
		}
	}
}

// reload skips files whose content hash is unchanged since the last load.
func (w *Watcher) reload(onChange ChangeFunc) {
	raw, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			w.logger.Debug("snapshot file missing", "path", w.path)
			return
		}
		onChange(service.PathRequest{}, err)
		return
	}

	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])
	w.mu.Lock()
	unchanged := hash == w.lastHash
	w.lastHash = hash
	w.mu.Unlock()
	if unchanged {
		return
	}

	req, err := Parse(raw, isYAML(w.path))
	if err != nil {
		w.logger.Warn("snapshot file invalid", "path", w.path, "error", err)
		onChange(service.PathRequest{}, fmt.Errorf("parse %s: %w", filepath.Base(w.path), err))
		return
	}
	w.logger.Debug("snapshot file loaded", "path", w.path, "nodes", len(req.Nodes), "edges", len(req.Edges))
	onChange(req, nil)
}
