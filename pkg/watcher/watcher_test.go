package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(40 * time.Millisecond)
	var calls atomic.Int32
	for range 8 {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if called.Load() {
		t.Error("cancelled trigger ran")
	}
	if NewDebouncer(-1).Duration() != DefaultDebounceDuration {
		t.Error("non-positive duration should use the default")
	}
}

func saveDataset(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func watch(t *testing.T, path string, opts ...Option) *Watcher {
	t.Helper()
	w, err := Watch(context.Background(), path, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Close)
	return w
}

func expectChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatchReportsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	saveDataset(t, path, `[{"nom":"Abricot"}]`)

	w := watch(t, path, WithDebounce(30*time.Millisecond), WithPollInterval(40*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	saveDataset(t, path, `[{"nom":"Abricot"},{"nom":"Miel"}]`)
	expectChange(t, w)
}

func TestWatchPolling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	saveDataset(t, path, "[]")

	w := watch(t, path,
		WithDebounce(20*time.Millisecond),
		WithPollInterval(40*time.Millisecond),
		WithForcePoll(true),
	)
	if w.Mode() != ModePoll {
		t.Errorf("mode = %s", w.Mode())
	}
	time.Sleep(30 * time.Millisecond)
	// size changes as well, so coarse mtimes cannot hide the write
	saveDataset(t, path, `[{"nom":"Vanille"}]`)
	expectChange(t, w)
}

func TestWatchPollingPicksUpCreation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.json")
	w := watch(t, path, WithDebounce(20*time.Millisecond), WithPollInterval(40*time.Millisecond), WithForcePoll(true))
	time.Sleep(30 * time.Millisecond)
	saveDataset(t, path, "[]")
	expectChange(t, w)
}

func TestForcePollEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"0", false},
		{"maybe", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Setenv("FG_FORCE_POLL", tt.value)
		if got := forcePollEnv(); got != tt.want {
			t.Errorf("FG_FORCE_POLL=%q: %v", tt.value, got)
		}
	}

	t.Setenv("FG_FORCE_POLL", "true")
	path := filepath.Join(t.TempDir(), "data.json")
	saveDataset(t, path, "[]")
	if w := watch(t, path); w.Mode() != ModePoll {
		t.Errorf("mode = %s", w.Mode())
	}
}

func TestWatchReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	saveDataset(t, path, "[]")

	var (
		mu  sync.Mutex
		got error
	)
	watch(t, path, WithPollInterval(40*time.Millisecond), WithForcePoll(true), WithOnError(func(err error) {
		mu.Lock()
		got = err
		mu.Unlock()
	}))
	time.Sleep(30 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := errors.Is(got, ErrFileRemoved)
		mu.Unlock()
		if done {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	t.Errorf("error = %v, want ErrFileRemoved", got)
}

func TestCloseSilencesWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	saveDataset(t, path, "[]")

	w := watch(t, path, WithDebounce(20*time.Millisecond), WithPollInterval(30*time.Millisecond), WithForcePoll(true))
	w.Close()
	w.Close()
	saveDataset(t, path, `[{"nom":"Miel"}]`)

	select {
	case <-w.Changed():
		t.Error("closed watcher reported a change")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatchPathIsAbsolute(t *testing.T) {
	t.Chdir(t.TempDir())
	w := watch(t, "data.json", WithForcePoll(true))
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Path() = %q", w.Path())
	}
}
