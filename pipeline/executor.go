package pipeline

import (
	"context"

	"github.com/lixenwraith/vi-tactics/action"
	"github.com/lixenwraith/vi-tactics/core"
)

// Token identifies one dispatched action until it completes
type Token uint64

// Executor is the external collaborator that plays out resolved actions
// Dispatch must not block on completion; completion is polled through IsComplete
type Executor interface {
	Dispatch(ctx context.Context, a action.ResolvedAction) (Token, error)
	IsComplete(tok Token) bool
}

// ForceClearer drops in-progress state, all of it when called without tokens
type ForceClearer interface {
	ForceClear(toks ...Token)
}

// Facer is told about facing-only player updates
type Facer interface {
	Face(actor core.ActorID, dir core.Direction)
}

// Quiescer reports whether the executor still runs anything
type Quiescer interface {
	Busy() bool
}

// inflight is a dispatched action awaiting completion
type inflight struct {
	tok    Token
	action action.ResolvedAction
}
