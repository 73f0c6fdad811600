// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives freshly loaded settings, or the error that prevented
// loading them. changed lists the files whose change triggered the reload.
type ReloadFunc func(settings *Settings, changed string, err error)

// Watcher reloads settings when the settings file or a local schema file
// it references changes.
type Watcher struct {
	path     string
	onReload ReloadFunc

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	watched map[string]bool
	dirs    map[string]bool
}

func NewWatcher(settings *Settings, onReload ReloadFunc) (*Watcher, error) {
	if settings.Path == "" {
		return nil, fmt.Errorf("Expected settings to be loaded from a file to watch it")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("Creating file watcher: %w", err)
	}

	w := &Watcher{
		path:     settings.Path,
		onReload: onReload,
		watcher:  fsWatcher,
		watched:  map[string]bool{},
		dirs:     map[string]bool{},
	}
	if err := w.watch(settings); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// watch adds the directories holding the settings and schema files. Editors
// often replace files instead of writing them, which a watch on the file
// itself would miss.
func (w *Watcher) watch(settings *Settings) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.watched = map[string]bool{}
	for _, path := range append([]string{settings.Path}, settings.SchemaFiles()...) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("Resolving path '%s': %w", path, err)
		}
		w.watched[abs] = true

		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("Watching directory '%s': %w", dir, err)
		}
		w.dirs[dir] = true
	}
	return nil
}

func (w *Watcher) isWatched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watched[abs]
}

// Run delivers reloads until ctx is done. It closes the underlying watcher
// on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.onReload(nil, "", fmt.Errorf("Watching settings: %w", err))

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.isWatched(event.Name) {
		return
	}

	settings, err := Load(w.path)
	if err == nil {
		err = w.watch(settings)
	}
	w.onReload(settings, event.Name, err)
}
