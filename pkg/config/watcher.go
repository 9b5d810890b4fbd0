package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/logging"
	"github.com/arthur-debert/lumen/pkg/render"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for a burst of file
// events to settle before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a config file when it changes and re-applies it to a
// renderer.
type Watcher struct {
	r        *render.Renderer
	opts     LoadOptions
	path     string
	debounce time.Duration
	onReload func(*Config)
	onError  func(error)
	logger   zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithReloadHandler is called after each successful reload.
func WithReloadHandler(fn func(*Config)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// WithErrorHandler is called when a reload fails. The renderer keeps
// its previous configuration.
func WithErrorHandler(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// NewWatcher watches the file cfg was loaded from.
func NewWatcher(r *render.Renderer, cfg *Config, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		r:        r,
		opts:     cfg.opts,
		path:     cfg.path,
		debounce: DefaultDebounce,
		logger:   logging.GetLogger("config.watcher"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching until ctx is done or Stop is called. The parent
// directory is watched so editors that replace the file are followed.
func (w *Watcher) Start(ctx context.Context) error {
	if w.path == "" {
		return errors.New(errors.ErrConfigLoad, "no config file to watch")
	}
	path, err := filepath.Abs(w.path)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "failed to resolve config path")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "failed to create watcher")
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to watch %s", path).
			WithDetail("path", path)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.watcher = fw
	w.cancel = cancel
	w.done = make(chan struct{})
	w.path = path
	w.mu.Unlock()

	w.logger.Info().Str("path", path).Dur("debounce", w.debounce).Msg("config watcher started")
	go w.watch(ctx, fw, w.done)
	return nil
}

// Stop ends watching and waits for the loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	fw, cancel, done := w.watcher, w.cancel, w.done
	w.watcher = nil
	w.mu.Unlock()
	if fw == nil {
		return nil
	}
	cancel()
	<-done
	return fw.Close()
}

func (w *Watcher) watch(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Debug().Msg("config watcher stopped")
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("config file change detected")
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	defer logging.LogOperationStart(w.logger, "config.reload")()
	opts := w.opts
	opts.Path = w.path
	cfg, err := Load(opts)
	if err == nil {
		err = cfg.Apply(w.r)
	}
	if err != nil {
		w.logger.Warn().Err(err).Msg("failed to reload config")
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.logger.Info().Str("path", w.path).Msg("config reloaded")
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
