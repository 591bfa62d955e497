package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mkloubert/editgate/pkg/acl"
)

// Defaults applied by Load when the file leaves them unset.
const (
	DefaultPort  = 1781
	DefaultRealm = "editgate"
)

// Config is the full configuration surface of the gateway.
type Config struct {
	// Port is the TCP port the server binds. Defaults to DefaultPort.
	Port int `yaml:"port"`

	// TLS enables HTTPS when set.
	TLS *TLS `yaml:"tls"`

	// Realm is sent in the WWW-Authenticate challenge.
	Realm string `yaml:"realm"`

	// Guest controls the unauthenticated fallback identity. Defaults to
	// allowed with an empty account.
	Guest Guest `yaml:"guest"`

	// Accounts lists the user accounts matched against Basic credentials,
	// in declaration order.
	Accounts []*acl.Account `yaml:"users"`

	// Endpoints is the custom endpoint route table, in declaration order.
	Endpoints []Route `yaml:"endpoints"`

	// Hooks maps hook name patterns to the scripts they trigger.
	Hooks map[string]HookTargets `yaml:"hooks"`

	// Validator is an optional script vetting every request before route
	// resolution.
	Validator string `yaml:"validator"`

	// Preparer is an optional script that may rewrite the resolved
	// identity before dispatch continues.
	Preparer string `yaml:"preparer"`

	// ShowDotfiles overrides the per-account dot-file rule for all
	// identities when true.
	ShowDotfiles bool `yaml:"show_dotfiles"`

	// RedisURL switches the state stores from memory to Redis when set.
	RedisURL string `yaml:"redis_url"`

	// Languages lists the languages offered for Accept-Language matching;
	// the first entry is the fallback.
	Languages []string `yaml:"languages"`

	// AutoStart makes the embedding environment start the server without
	// an explicit command.
	AutoStart bool `yaml:"auto_start"`

	// ScriptTimeout bounds a single script invocation. Zero keeps the
	// host default.
	ScriptTimeout time.Duration `yaml:"script_timeout"`
}

// TLS carries the HTTPS material. Paths are file paths; Passphrase may use
// ${ENV_VAR} expansion like every other value in the file.
type TLS struct {
	CA                 string `yaml:"ca"`
	Cert               string `yaml:"cert"`
	Key                string `yaml:"key"`
	Passphrase         string `yaml:"passphrase"`
	RejectUnauthorized bool   `yaml:"reject_unauthorized"`
}

// Guest is either a bare boolean ("guest: false") or a full account
// mapping whose capabilities the guest identity gets.
type Guest struct {
	Allowed bool
	Account *acl.Account
}

// UnmarshalYAML accepts both forms.
func (g *Guest) UnmarshalYAML(value *yaml.Node) error {
	var allowed bool
	if err := value.Decode(&allowed); err == nil {
		g.Allowed = allowed
		g.Account = nil
		return nil
	}

	var acc acl.Account
	if err := value.Decode(&acc); err != nil {
		return fmt.Errorf("config: guest must be a boolean or an account mapping: %w", err)
	}
	g.Allowed = true
	g.Account = &acc
	return nil
}

// GuestAccount returns the account backing guest identities, or nil when
// guests are not allowed. A bare "guest: true" yields an empty account.
func (g *Guest) GuestAccount() *acl.Account {
	if !g.Allowed {
		return nil
	}
	if g.Account != nil {
		return g.Account
	}
	return &acl.Account{}
}

// Route is one custom endpoint declaration. Pattern is a regular
// expression tested against the normalized request path; an empty pattern
// matches every path.
type Route struct {
	Pattern string         `yaml:"pattern"`
	Script  string         `yaml:"script"`
	Options map[string]any `yaml:"options"`
	Active  *bool          `yaml:"active"`
}

// IsActive reports whether the route takes part in resolution. Routes are
// active unless explicitly disabled.
func (r Route) IsActive() bool {
	return r.Active == nil || *r.Active
}

// HookTarget is one script bound to a hook pattern.
type HookTarget struct {
	Script  string         `yaml:"script"`
	Options map[string]any `yaml:"options"`
}

// HookTargets accepts a single script path, a single target mapping, or a
// sequence of either.
type HookTargets []HookTarget

// UnmarshalYAML accepts all three forms.
func (h *HookTargets) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		out := make(HookTargets, 0, len(value.Content))
		for _, node := range value.Content {
			t, err := decodeHookTarget(node)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		*h = out
		return nil
	}

	t, err := decodeHookTarget(value)
	if err != nil {
		return err
	}
	*h = HookTargets{t}
	return nil
}

func decodeHookTarget(node *yaml.Node) (HookTarget, error) {
	var path string
	if err := node.Decode(&path); err == nil {
		return HookTarget{Script: path}, nil
	}

	var t HookTarget
	if err := node.Decode(&t); err != nil {
		return HookTarget{}, fmt.Errorf("config: hook target must be a script path or a mapping: %w", err)
	}
	return t, nil
}

// Load reads and parses the configuration file at path. ${ENV_VAR}
// references anywhere in the file are expanded before parsing, so secrets
// like passwords and the TLS passphrase can stay out of the file itself.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse parses raw YAML configuration bytes. See Load.
func Parse(raw []byte) (*Config, error) {
	expanded := os.Expand(string(raw), func(name string) string {
		return os.Getenv(name)
	})

	cfg := &Config{
		Port:  DefaultPort,
		Realm: DefaultRealm,
		Guest: Guest{Allowed: true},
	}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.TLS != nil {
		if c.TLS.Cert == "" || c.TLS.Key == "" {
			return fmt.Errorf("config: tls requires both cert and key")
		}
	}
	for i, acc := range c.Accounts {
		if acc.Name == "" {
			return fmt.Errorf("config: users[%d] has no name", i)
		}
	}
	for i, route := range c.Endpoints {
		if route.Script == "" {
			return fmt.Errorf("config: endpoints[%d] has no script", i)
		}
	}
	return nil
}
