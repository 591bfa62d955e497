package visibility

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/mkloubert/editgate/pkg/acl"
)

// Policy decides whether file-system paths may be disclosed to one
// account's identities. It combines two tiers: recursive directory
// visibility with hierarchical leading-dot rules, and glob allow/deny lists
// over the account's Files/Exclude patterns. Paths outside the resolution
// root are never visible, which is what keeps traversal attempts inside the
// workspace.
type Policy struct {
	fsys    afero.Fs
	root    string
	account *acl.Account
}

// New creates a Policy scoped to a single account and a resolution root.
// root is cleaned; relative paths passed to the visibility checks are
// resolved against it.
func New(fsys afero.Fs, root string, account *acl.Account) *Policy {
	return &Policy{
		fsys:    fsys,
		root:    filepath.Clean(root),
		account: account,
	}
}

// Root returns the cleaned resolution root.
func (p *Policy) Root() string {
	return p.root
}

// IsDirVisible reports whether the directory at path may be disclosed.
//
// A directory is visible only if it exists, every ancestor up to the
// resolution root is itself visible, and a leading-dot basename is permitted
// by the account's WithDot flag or the caller-supplied override. The root
// itself is always visible and terminates the recursion, so behavior at
// filesystem roots is unambiguous. Ancestors are checked first; the first
// invisible ancestor makes all descendants invisible.
func (p *Policy) IsDirVisible(ctx context.Context, path string, dotOverride bool) (bool, error) {
	abs, ok := p.resolve(path)
	if !ok {
		return false, nil
	}
	return p.dirVisible(ctx, abs, dotOverride)
}

// IsFileVisible reports whether the regular file at path may be disclosed.
//
// The file must exist, its containing directory must be visible per the
// directory rule, and the root-relative path must match at least one of the
// account's include patterns (default "**") without matching any exclude
// pattern.
func (p *Policy) IsFileVisible(ctx context.Context, path string, dotOverride bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	abs, ok := p.resolve(path)
	if !ok {
		return false, nil
	}

	info, err := p.fsys.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	dirOK, err := p.dirVisible(ctx, filepath.Dir(abs), dotOverride)
	if err != nil || !dirOK {
		return false, err
	}

	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return false, nil
	}

	return p.matches(filepath.ToSlash(rel)), nil
}

// dirVisible implements the ancestor-first recursion over resolved absolute
// paths. Sibling checks could run in parallel, but ancestor checks must stay
// sequential so the first invisible ancestor short-circuits.
func (p *Policy) dirVisible(ctx context.Context, abs string, dotOverride bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	// Root sentinel: the resolution root is always visible.
	if abs == p.root {
		return true, nil
	}

	parent := filepath.Dir(abs)
	if parent == abs {
		// Walked past a filesystem root without meeting the resolution
		// root: the path is not under it.
		return false, nil
	}

	ok, err := p.dirVisible(ctx, parent, dotOverride)
	if err != nil || !ok {
		return false, err
	}

	info, err := p.fsys.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, nil
	}

	if strings.HasPrefix(filepath.Base(abs), ".") && !p.account.WithDot && !dotOverride {
		return false, nil
	}

	return true, nil
}

// resolve turns path into a cleaned absolute path under the root.
// Returns ok=false when the path escapes the root.
func (p *Policy) resolve(path string) (string, bool) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.root, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return abs, true
}

// matches applies the account's include/exclude patterns to a root-relative
// slash path. Patterns are deduplicated; excludes always win; dot-files are
// matchable by the glob engine.
func (p *Policy) matches(rel string) bool {
	for _, pattern := range dedupe(p.account.Exclude) {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return false
		}
	}

	include := dedupe(p.account.Files)
	if len(include) == 0 {
		include = []string{"**"}
	}
	for _, pattern := range include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// dedupe removes duplicate and empty patterns, preserving order.
func dedupe(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
