package modules

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/statestore"
)

// State exposes workspace-scoped shared values over the workspace state
// store. Reads are open to every identity; mutation requires the write
// capability. Last-write-wins, like every state store in the process.
type State struct{}

// NewState creates the state module.
func NewState() *State {
	return &State{}
}

// Name implements internal.Module.
func (*State) Name() string { return "state" }

// Get returns the value stored under the key named by the path remainder.
func (*State) Get(ctx context.Context, args *internal.Args) error {
	if args.Path == "" {
		args.SendNotFound()
		return nil
	}

	value, err := args.WorkspaceState().Get(ctx, args.Path)
	if err != nil {
		if errors.Is(err, statestore.ErrNotFound) {
			args.SendNotFound()
			return nil
		}
		return err
	}

	args.Response.Data = map[string]any{
		"key":   args.Path,
		"value": value,
	}
	return nil
}

// Put stores the JSON request body under the key.
func (*State) Put(ctx context.Context, args *internal.Args) error {
	if !args.Identity.Can(acl.CapWrite) {
		args.SendForbidden()
		return nil
	}
	if args.Path == "" {
		args.SendNotFound()
		return nil
	}

	body, err := args.Body()
	if err != nil {
		return err
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		args.SendBadRequest("body must be JSON")
		return nil
	}

	if err := args.WorkspaceState().Set(ctx, args.Path, value, 0); err != nil {
		return err
	}

	args.Response.Data = map[string]any{"key": args.Path}
	return nil
}

// Delete removes the key. Deleting a missing key succeeds.
func (*State) Delete(ctx context.Context, args *internal.Args) error {
	if !args.Identity.Can(acl.CapWrite) {
		args.SendForbidden()
		return nil
	}
	if args.Path == "" {
		args.SendNotFound()
		return nil
	}

	if err := args.WorkspaceState().Delete(ctx, args.Path); err != nil && !errors.Is(err, statestore.ErrNotFound) {
		return err
	}

	args.Response.Data = map[string]any{"key": args.Path}
	return nil
}
