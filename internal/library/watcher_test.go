package library

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sound-server/internal/log"
)

func TestWatcher_ReportsAddAndRemove(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var changes []Change
	w := NewWatcher(New(dir), log.Discard(), func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, ready) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}

	writeFile(t, dir, "bell.wav")
	require.NoError(t, os.Remove(filepath.Join(dir, "bell.wav")))

	has := func(kind ChangeKind) bool {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range changes {
			if c.Kind == kind && c.Name == "bell.wav" {
				return true
			}
		}
		return false
	}
	require.Eventually(t, func() bool { return has(ChangeAdded) && has(ChangeRemoved) }, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(New(filepath.Join(t.TempDir(), "missing")), log.Discard(), nil)
	err := w.Run(context.Background(), nil)
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want ChangeKind
		ok   bool
	}{
		{fsnotify.Create, ChangeAdded, true},
		{fsnotify.Remove, ChangeRemoved, true},
		{fsnotify.Rename, ChangeRemoved, true},
		{fsnotify.Write, ChangeUpdated, true},
		{fsnotify.Chmod, "", false},
	}
	for _, tt := range tests {
		c, ok := classify(fsnotify.Event{Name: "/x/bell.wav", Op: tt.op})
		assert.Equal(t, tt.ok, ok, tt.op.String())
		if ok {
			assert.Equal(t, tt.want, c.Kind)
			assert.Equal(t, "bell.wav", c.Name)
		}
	}
}
