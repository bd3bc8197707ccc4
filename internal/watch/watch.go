// Package watch provides a filesystem-trigger fallback for environments
// without a message broker: the switch integration drops one empty file
// named after a linked-id into watchDir when that call's LINKEDID_END
// fires. This mirrors the bus trigger (spec §6) without requiring MQTT.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// TriggerHandler is invoked once per linked-id trigger file observed.
type TriggerHandler func(linkedID string)

type Status struct {
	State          string
	WatchDir       string
	FilesProcessed int64
}

// Watcher monitors watchDir for new trigger files and invokes a handler
// per linked-id, debouncing rapid Create+Write events on the same file.
type Watcher struct {
	watchDir string
	handler  TriggerHandler
	log      zerolog.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc

	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer

	filesProcessed atomic.Int64
	state          atomic.Value // string
}

func New(watchDir string, handler TriggerHandler, log zerolog.Logger) *Watcher {
	w := &Watcher{
		watchDir:       watchDir,
		handler:        handler,
		log:            log.With().Str("component", "watch").Logger(),
		debounceTimers: make(map[string]*time.Timer),
	}
	w.state.Store("starting")
	return w
}

// Start initializes the fsnotify watch on watchDir and begins watching
// for new trigger files until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fw

	if err := fw.Add(w.watchDir); err != nil {
		fw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.log.Info().Str("watch_dir", w.watchDir).Msg("trigger file watcher initialized")
	w.state.Store("watching")

	go w.loop(ctx)
	return nil
}

func (w *Watcher) Stop() {
	w.state.Store("stopped")
	if w.watcher != nil {
		w.watcher.Close()
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.log.Info().Int64("files_processed", w.filesProcessed.Load()).Msg("trigger file watcher stopped")
}

func (w *Watcher) Status() Status {
	state, _ := w.state.Load().(string)
	return Status{
		State:          state,
		WatchDir:       w.watchDir,
		FilesProcessed: w.filesProcessed.Load(),
	}
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				continue
			}
			w.scheduleProcess(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("fsnotify error")
		}
	}
}

// scheduleProcess debounces by 200ms so a trigger file fully lands
// before being read and removed.
func (w *Watcher) scheduleProcess(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if t, ok := w.debounceTimers[path]; ok {
		t.Reset(200 * time.Millisecond)
		return
	}
	w.debounceTimers[path] = time.AfterFunc(200*time.Millisecond, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()
		w.processTriggerFile(path)
	})
}

func (w *Watcher) processTriggerFile(path string) {
	linkedID := filepath.Base(path)
	if linkedID == "" || linkedID == "." {
		return
	}

	w.handler(linkedID)
	w.filesProcessed.Add(1)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		w.log.Warn().Err(err).Str("path", path).Msg("failed to remove consumed trigger file")
	}
}
