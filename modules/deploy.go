package modules

import (
	"context"
	"errors"
	"sync"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/host"
)

// Deploy starts deployments through the environment's Deployer. At most
// one deployment per target may be in flight; a second request for the
// same target while one runs is answered with 409.
type Deploy struct {
	env host.Environment

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewDeploy creates the deploy module.
func NewDeploy(env host.Environment) *Deploy {
	return &Deploy{
		env:      env,
		inflight: make(map[string]struct{}),
	}
}

// Name implements internal.Module.
func (*Deploy) Name() string { return "deploy" }

// Post deploys the named target. The request blocks until the deployment
// finishes; concurrent requests for other targets proceed independently.
func (m *Deploy) Post(ctx context.Context, args *internal.Args) error {
	deployer, ok := m.env.(host.Deployer)
	if !ok {
		args.SendGone()
		return nil
	}
	if !args.Identity.Can(acl.CapDeploy) {
		args.SendForbidden()
		return nil
	}

	var body struct {
		Target string   `json:"target"`
		Files  []string `json:"files"`
	}
	if err := args.JSON(&body); err != nil || body.Target == "" {
		args.SendBadRequest("missing deploy target")
		return nil
	}

	if !m.acquire(body.Target) {
		args.SendConflict()
		return nil
	}
	defer m.release(body.Target)

	if err := deployer.Deploy(ctx, body.Target, body.Files); err != nil {
		if errors.Is(err, host.ErrUnknownTarget) {
			args.SendNotFound()
			return nil
		}
		return err
	}

	args.Response.Data = map[string]any{
		"target":   body.Target,
		"deployed": true,
	}
	return nil
}

func (m *Deploy) acquire(target string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.inflight[target]; busy {
		return false
	}
	m.inflight[target] = struct{}{}
	return true
}

func (m *Deploy) release(target string) {
	m.mu.Lock()
	delete(m.inflight, target)
	m.mu.Unlock()
}
