// Package watcher reports changes to the dataset file so hosts can reload
// it. It uses fsnotify on the containing directory and falls back to
// polling when notifications are unavailable or FG_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
)

// DefaultPollInterval is the polling interval in fallback mode.
const DefaultPollInterval = 2 * time.Second

// Mode is how a Watcher learns about changes.
type Mode string

const (
	ModeNotify Mode = "fsnotify"
	ModePoll   Mode = "poll"
)

var (
	ErrFileRemoved = errors.New("dataset file was removed")
	ErrPermission  = errors.New("dataset file is not readable")
)

type settings struct {
	quiet     time.Duration
	poll      time.Duration
	forcePoll bool
	onError   func(error)
}

// Option configures Watch.
type Option func(*settings)

// WithDebounce sets how long the file must stay quiet before a change is
// reported.
func WithDebounce(d time.Duration) Option {
	return func(s *settings) { s.quiet = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) Option {
	return func(s *settings) { s.forcePoll = force }
}

// WithOnError receives removal, permission and fsnotify errors. They never
// stop the watcher.
func WithOnError(fn func(error)) Option {
	return func(s *settings) {
		if fn != nil {
			s.onError = fn
		}
	}
}

// stamp identifies one version of the file for polling.
type stamp struct {
	mod  time.Time
	size int64
}

func (s stamp) exists() bool { return !s.mod.IsZero() }

func (s stamp) same(o stamp) bool { return s.mod.Equal(o.mod) && s.size == o.size }

func statStamp(path string) (stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stamp{}, err
	}
	return stamp{mod: info.ModTime(), size: info.Size()}, nil
}

// Watcher watches one dataset file until Close or until its context ends.
type Watcher struct {
	path    string
	mode    Mode
	onError func(error)
	bounce  *Debouncer
	changes chan struct{}

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc

	mu     sync.Mutex
	last   stamp
	closed bool
}

// Watch starts watching path. A missing file is watched for creation; an
// unreadable one fails with ErrPermission.
func Watch(ctx context.Context, path string, opts ...Option) (*Watcher, error) {
	s := settings{
		quiet:   DefaultDebounceDuration,
		poll:    DefaultPollInterval,
		onError: func(error) {},
	}
	for _, opt := range opts {
		opt(&s)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	last, err := statStamp(abs)
	if os.IsPermission(err) {
		return nil, ErrPermission
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		path:    abs,
		mode:    ModePoll,
		onError: s.onError,
		bounce:  NewDebouncer(s.quiet),
		changes: make(chan struct{}, 1),
		cancel:  cancel,
		last:    last,
	}

	if !s.forcePoll && !forcePollEnv() {
		if fsw, err := notifier(abs); err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", abs, err)
		} else {
			w.fsw = fsw
			w.mode = ModeNotify
			go w.notifyLoop(ctx)
		}
	}
	if w.mode == ModePoll {
		go w.pollLoop(ctx, s.poll)
	}
	return w, nil
}

// notifier watches the directory rather than the file so atomic renames
// are seen.
func notifier(path string) (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return fsw, nil
}

func forcePollEnv() bool {
	v, err := strconv.ParseBool(os.Getenv("FG_FORCE_POLL"))
	return err == nil && v
}

// Changed receives once per debounced change. It is never closed.
func (w *Watcher) Changed() <-chan struct{} { return w.changes }

// Mode reports whether the watcher uses fsnotify or polling.
func (w *Watcher) Mode() Mode { return w.mode }

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Close stops watching. Pending changes are dropped. Close is idempotent.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.cancel()
	w.bounce.Cancel()
	if w.fsw != nil {
		w.fsw.Close()
	}
}

func (w *Watcher) notifyLoop(ctx context.Context) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.onError(ErrFileRemoved)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.bounce.Trigger(w.emit)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) pollLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		cur, err := statStamp(w.path)
		w.mu.Lock()
		prev := w.last
		w.last = cur
		w.mu.Unlock()

		switch {
		case os.IsNotExist(err):
			if prev.exists() {
				w.onError(ErrFileRemoved)
			}
		case os.IsPermission(err):
			w.onError(ErrPermission)
		case err != nil:
			w.onError(err)
		case !cur.same(prev):
			w.bounce.Trigger(w.emit)
		}
	}
}

func (w *Watcher) emit() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	debug.Log("watcher: %s changed", w.path)
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
