package host

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/edgekit/bindlike"
)

// reloadDebounce coalesces the event bursts editors and cert tooling produce
// when rewriting a file.
const reloadDebounce = 200 * time.Millisecond

// Reloader watches the binding configuration and the certificate files it
// references, re-provisioning the environment when any of them change. The
// swap is atomic: invocations that already resolved bindings keep the old
// environment; new invocations see the new one. A failed re-provision keeps
// serving the previous environment rather than dropping bindings.
type Reloader struct {
	path     string
	env      atomic.Pointer[bindlike.Environment]
	watched  atomic.Pointer[[]string]
	log      zerolog.Logger
	debounce time.Duration
}

// NewReloader provisions the initial environment from path. Provisioning
// failure at startup is fatal; there is nothing to fall back to yet.
func NewReloader(path string, log zerolog.Logger) (*Reloader, error) {
	r := &Reloader{path: path, log: log, debounce: reloadDebounce}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	env, err := Provision(cfg, log)
	if err != nil {
		return nil, err
	}
	r.env.Store(env)
	r.storeWatched(cfg)
	return r, nil
}

// Environment returns the current environment. Safe to call concurrently
// with a reload.
func (r *Reloader) Environment() *bindlike.Environment {
	return r.env.Load()
}

func (r *Reloader) storeWatched(cfg *Config) {
	paths := append([]string{r.path}, cfg.certificatePaths()...)
	r.watched.Store(&paths)
}

// Run watches for changes until ctx is cancelled. Watches are directory
// level: certificate rotation tooling typically replaces files via rename,
// which a file-level watch loses.
func (r *Reloader) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dirs := make(map[string]bool)
	for _, p := range *r.watched.Load() {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(r.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(r.debounce)
			}

		case <-fire:
			timer = nil
			r.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (r *Reloader) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	for _, p := range *r.watched.Load() {
		if filepath.Clean(ev.Name) == filepath.Clean(p) {
			return true
		}
	}
	return false
}

func (r *Reloader) reload() {
	cfg, err := Load(r.path)
	if err != nil {
		r.log.Error().Err(err).Msg("reload: config rejected, keeping previous environment")
		return
	}
	env, err := Provision(cfg, r.log)
	if err != nil {
		r.log.Error().Err(err).Msg("reload: provisioning failed, keeping previous environment")
		return
	}
	r.env.Store(env)
	r.storeWatched(cfg)
	r.log.Info().Msg("bindings reloaded")
}
