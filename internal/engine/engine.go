// Package engine decides which paths carry the backup exclusion mark.
//
// Mark walks root directories depth first, marking what version control
// ignores unless a skip or allowlist rule protects it. Reset walks a tree and
// clears every mark outside the allowlist.
package engine

import (
	"fmt"

	"github.com/Aman-CERP/tmbliss/internal/gitignore"
	"github.com/Aman-CERP/tmbliss/internal/marker"
)

// Reporter receives the events of a run.
type Reporter interface {
	Event(label, message string)
}

// Engine runs Mark and Reset against a marker store.
type Engine struct {
	store    marker.Store
	ignores  gitignore.Lister
	reporter Reporter
}

// New creates an Engine.
func New(store marker.Store, ignores gitignore.Lister, reporter Reporter) *Engine {
	return &Engine{store: store, ignores: ignores, reporter: reporter}
}

func (e *Engine) report(label, message string) {
	if e.reporter != nil {
		e.reporter.Event(label, message)
	}
}

// reportFailure reports a per-path failure that SkipErrors downgraded.
func (e *Engine) reportFailure(label, path string, err error) {
	e.report(label, fmt.Sprintf("%s, %s", path, err))
}
