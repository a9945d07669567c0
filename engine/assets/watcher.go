package assets

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/screenfx/engine/core"
)

// SettingsWatcher reports changes of a single settings file. The directory is
// watched rather than the file so editors that replace the file on save are
// still noticed.
type SettingsWatcher struct {
	path string

	fsnotify *fsnotify.Watcher
	reloads  chan struct{}
	errors   chan error
	done     chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewSettingsWatcher(path string) (*SettingsWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	sw := &SettingsWatcher{
		path:     abs,
		fsnotify: fsWatch,
		// one pending reload is enough, more writes collapse into it
		reloads: make(chan struct{}, 1),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.start()
	return sw, nil
}

func (sw *SettingsWatcher) Path() string {
	return sw.path
}

// Reloads delivers a value whenever the settings file was written, created or
// replaced since the last receive.
func (sw *SettingsWatcher) Reloads() <-chan struct{} {
	return sw.reloads
}

func (sw *SettingsWatcher) Errors() <-chan error {
	return sw.errors
}

// Pending reports, without blocking, whether a reload is waiting.
func (sw *SettingsWatcher) Pending() bool {
	select {
	case <-sw.reloads:
		return true
	default:
		return false
	}
}

func (sw *SettingsWatcher) Close() error {
	var err error
	sw.closeOnce.Do(func() {
		close(sw.done)
		sw.wg.Wait()
		err = sw.fsnotify.Close()
	})
	return err
}

func (sw *SettingsWatcher) start() {
	defer sw.wg.Done()
	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != sw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			core.LogDebug("settings file '%s' changed (%s)", sw.path, e.Op)
			select {
			case sw.reloads <- struct{}{}:
			default:
			}

		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// events were dropped, the file may have changed
				select {
				case sw.reloads <- struct{}{}:
				default:
				}
			}
			core.LogError("settings watcher: %s", err)
			select {
			case sw.errors <- err:
			default:
			}

		case <-sw.done:
			return
		}
	}
}
