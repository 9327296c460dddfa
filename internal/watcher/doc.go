// Package watcher tells the service when the marking rules under its roots
// may have changed.
//
// It watches every directory below the configured roots with fsnotify and
// reports two kinds of change: an ignore file (.gitignore or .tmbliss) was
// written, created or removed, and a new directory appeared. Bursts of such
// changes are coalesced by a Debouncer into one batch per quiet window, so a
// `git checkout` touching hundreds of files causes a single re-run.
//
// Usage:
//
//	w, err := watcher.New(watcher.Options{DebounceWindow: 2 * time.Second})
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go w.Start(ctx, roots)
//	for batch := range w.Events() {
//	    // re-run marking
//	}
package watcher
