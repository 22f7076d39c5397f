package library

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a directory change.
type ChangeKind string

const (
	// ChangeAdded means a sound file appeared in the directory.
	ChangeAdded ChangeKind = "added"
	// ChangeRemoved means a sound file was deleted or renamed away.
	ChangeRemoved ChangeKind = "removed"
	// ChangeUpdated means an existing sound file was rewritten.
	ChangeUpdated ChangeKind = "updated"
)

// Change is one observed modification of the sounds directory.
type Change struct {
	Kind ChangeKind
	Name string
}

// Watcher reports changes to the sounds directory. It only observes: List
// still reads the directory on every call.
type Watcher struct {
	lib      *Library
	log      *slog.Logger
	onChange func(Change)
}

// NewWatcher creates a watcher for lib. onChange may be nil.
func NewWatcher(lib *Library, log *slog.Logger, onChange func(Change)) *Watcher {
	return &Watcher{lib: lib, log: log, onChange: onChange}
}

// Run watches until ctx is cancelled. It returns an error only if the watch
// could not be established.
func (w *Watcher) Run(ctx context.Context, ready chan<- struct{}) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.lib.Dir()); err != nil {
		return fmt.Errorf("watch %s: %w", w.lib.Dir(), err)
	}
	w.log.Info("watching sounds directory", "dir", w.lib.Dir())
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if c, ok := classify(ev); ok {
				w.log.Debug("sounds directory changed", "kind", c.Kind, "name", c.Name)
				if w.onChange != nil {
					w.onChange(c)
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func classify(ev fsnotify.Event) (Change, bool) {
	name := filepath.Base(ev.Name)
	switch {
	case ev.Has(fsnotify.Create):
		return Change{Kind: ChangeAdded, Name: name}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Change{Kind: ChangeRemoved, Name: name}, true
	case ev.Has(fsnotify.Write):
		return Change{Kind: ChangeUpdated, Name: name}, true
	}
	return Change{}, false
}
