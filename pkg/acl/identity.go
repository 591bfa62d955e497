package acl

import (
	"maps"
	"sync"
)

// Identity is the resolved, capability-bearing representation of the caller
// for one request. It borrows its Account from the process-wide
// configuration and owns a private variable mapping seeded from the
// account's capability flags and custom values. The mapping is rebuilt on
// every request, so mutations never leak across requests even when the same
// Account serves several clients.
type Identity struct {
	account *Account
	guest   bool

	mu   sync.RWMutex
	vars map[string]any
}

// NewIdentity creates an Identity for the given account, materializing the
// capability defaults and copying the account's custom values verbatim.
func NewIdentity(account *Account, guest bool) *Identity {
	vars := make(map[string]any, len(Capabilities)+len(account.Values))
	for name, flag := range account.capabilityFlags() {
		vars[VarPrefix+name] = flag
	}
	maps.Copy(vars, account.Values)

	return &Identity{
		account: account,
		guest:   guest,
		vars:    vars,
	}
}

// Account returns the underlying account. The account is borrowed
// configuration data and must not be mutated.
func (i *Identity) Account() *Account {
	return i.account
}

// IsGuest reports whether the identity was resolved via the guest fallback.
func (i *Identity) IsGuest() bool {
	return i.guest
}

// Get returns the variable value and whether it is set.
func (i *Identity) Get(name string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.vars[name]
	return v, ok
}

// Set stores a variable value.
func (i *Identity) Set(name string, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.vars[name] = value
}

// Has reports whether the variable is set.
func (i *Identity) Has(name string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.vars[name]
	return ok
}

// Unset removes a variable.
func (i *Identity) Unset(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.vars, name)
}

// Can reports whether the identity holds the named capability.
// The global "anything" override grants every capability regardless of the
// specific flag.
func (i *Identity) Can(name string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if truthy(i.vars[VarPrefix+CapAnything]) {
		return true
	}
	return truthy(i.vars[VarPrefix+name])
}

// Vars returns a snapshot of the variable mapping.
func (i *Identity) Vars() map[string]any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make(map[string]any, len(i.vars))
	maps.Copy(out, i.vars)
	return out
}

// truthy interprets a variable value as a capability flag. Scripts may
// overwrite capability variables with non-bool values; anything but an
// explicit true-like value denies.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}
