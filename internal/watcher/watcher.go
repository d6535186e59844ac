// Package watcher monitors the deck directory and notifies the TUI to
// rescan. Only the directory itself is watched, not subdirectories, which
// matches what a deck shows.
//
// Events are filtered by file name before they start the debounce timer:
// editor swap files, lock files and files the deck would not show never
// trigger a rescan. Editors that save by writing a temp file and renaming
// it over the original still produce a create event for the real name.
package watcher

import (
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is sent when the watcher detects relevant changes.
type Event struct{}

// Filter reports whether a changed file name is relevant.
type Filter func(name string) bool

// Watch monitors dir and sends Event values on the returned channel. Rapid
// bursts are coalesced via the debounce window. A nil keep accepts every
// file that is not ignored outright.
//
// Call the returned stop function to tear down the watcher.
func Watch(dir string, keep Filter, debounce time.Duration) (<-chan Event, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, nil, err
	}

	ch := make(chan Event, 1)
	done := make(chan struct{})

	// jitterRange adds randomness to the debounce so several instances
	// watching the same directory do not all rescan at the same moment.
	jitterRange := debounce / 2 // 0 to 50% of debounce

	go func() {
		defer close(ch)
		var timer *time.Timer

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op == fsnotify.Chmod || shouldIgnore(ev.Name) {
					continue
				}
				if keep != nil && !keep(ev.Name) {
					continue
				}
				d := debounce
				if jitterRange > 0 {
					d += time.Duration(rand.Int64N(int64(jitterRange)))
				}
				if timer == nil {
					timer = time.NewTimer(d)
				} else {
					timer.Reset(d)
				}
			case <-timerChan(timer):
				timer = nil
				select {
				case ch <- Event{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		_ = w.Close()
	}

	return ch, stop, nil
}

// timerChan returns the timer's channel, or a nil channel if timer is nil.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// shouldIgnore returns true for files that should never trigger a rescan.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	if strings.HasSuffix(base, ".lock") {
		return true
	}

	// Editor swap/temp files.
	if strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swo") ||
		strings.HasSuffix(base, "~") || strings.HasPrefix(base, ".#") ||
		strings.HasSuffix(base, ".tmp") {
		return true
	}

	// Hidden files are never pages.
	return strings.HasPrefix(base, ".")
}
