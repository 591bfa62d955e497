package acl

import "gopkg.in/yaml.v3"

// Capability names. Each gates a class of host-environment operations and is
// materialized into an Identity's variable mapping as "can_<name>".
const (
	CapActivate = "activate"
	CapAnything = "anything"
	CapClose    = "close"
	CapCreate   = "create"
	CapDelete   = "delete"
	CapDeploy   = "deploy"
	CapExecute  = "execute"
	CapOpen     = "open"
	CapWrite    = "write"
)

// Capabilities lists all known capability names.
var Capabilities = []string{
	CapActivate,
	CapAnything,
	CapClose,
	CapCreate,
	CapDelete,
	CapDeploy,
	CapExecute,
	CapOpen,
	CapWrite,
}

// VarPrefix is the prefix of capability variables in an Identity's mapping.
const VarPrefix = "can_"

// Account is a configured principal. Accounts are configuration data: they
// are read-only during dispatch, and exactly one account resolves to a given
// Identity per request.
type Account struct {
	// Name is the Basic-auth username. Empty for the guest account.
	Name string `yaml:"name" json:"name"`

	// Password is compared against the decoded Basic credential.
	// Passwords are stored in clear text for compatibility with existing
	// configurations; the comparison is constant-time, but operators should
	// treat the configuration file as a secret.
	Password string `yaml:"password" json:"-"`

	// IsActive excludes the account from resolution when false.
	IsActive bool `yaml:"active" json:"active"`

	// Capability flags. All default to false.
	CanActivate bool `yaml:"can_activate" json:"can_activate"`
	CanAnything bool `yaml:"can_anything" json:"can_anything"`
	CanClose    bool `yaml:"can_close" json:"can_close"`
	CanCreate   bool `yaml:"can_create" json:"can_create"`
	CanDelete   bool `yaml:"can_delete" json:"can_delete"`
	CanDeploy   bool `yaml:"can_deploy" json:"can_deploy"`
	CanExecute  bool `yaml:"can_execute" json:"can_execute"`
	CanOpen     bool `yaml:"can_open" json:"can_open"`
	CanWrite    bool `yaml:"can_write" json:"can_write"`

	// Files are the include glob patterns for the visibility policy.
	// Empty means "everything" ("**").
	Files []string `yaml:"files" json:"files,omitempty"`

	// Exclude are the deny glob patterns for the visibility policy.
	Exclude []string `yaml:"exclude" json:"exclude,omitempty"`

	// WithDot makes leading-dot files and directories visible by default.
	WithDot bool `yaml:"with_dot" json:"with_dot"`

	// Values are account-declared custom values, copied verbatim into every
	// Identity resolved from this account.
	Values map[string]any `yaml:"values" json:"values,omitempty"`
}

// UnmarshalYAML decodes an account mapping. Accounts are active unless the
// file disables them explicitly.
func (a *Account) UnmarshalYAML(value *yaml.Node) error {
	type plain Account
	tmp := plain{IsActive: true}
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*a = Account(tmp)
	return nil
}

// capabilityFlags returns the capability name → flag mapping.
func (a *Account) capabilityFlags() map[string]bool {
	return map[string]bool{
		CapActivate: a.CanActivate,
		CapAnything: a.CanAnything,
		CapClose:    a.CanClose,
		CapCreate:   a.CanCreate,
		CapDelete:   a.CanDelete,
		CapDeploy:   a.CanDeploy,
		CapExecute:  a.CanExecute,
		CapOpen:     a.CanOpen,
		CapWrite:    a.CanWrite,
	}
}
