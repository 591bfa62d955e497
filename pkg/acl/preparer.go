package acl

import "context"

// Preparer is an optional external hook that runs after account resolution
// and may rewrite the resolved Identity before dispatch continues.
//
// A nil returned Identity (with nil error) keeps the resolved one. A non-nil
// error aborts the request. Implementations are typically script-backed
// (see pkg/scripting) and may keep per-script persistent state.
type Preparer interface {
	Prepare(ctx context.Context, identity *Identity) (*Identity, error)
}

// PreparerFunc adapts a function to the Preparer interface.
type PreparerFunc func(ctx context.Context, identity *Identity) (*Identity, error)

func (f PreparerFunc) Prepare(ctx context.Context, identity *Identity) (*Identity, error) {
	return f(ctx, identity)
}
