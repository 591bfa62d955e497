// Package visibility enforces which workspace paths an account may see.
//
// Visibility is decided in two tiers. Directories are checked recursively
// from the resolution root down: every ancestor must exist and be visible,
// and leading-dot names are hidden unless the account opts in or the caller
// overrides. Files additionally pass through the account's include and
// exclude glob lists, where excludes always win and the include list
// defaults to "**".
//
//	fsys := afero.NewOsFs()
//	pol := visibility.New(fsys, "/workspace", account)
//
//	ok, err := pol.IsFileVisible(ctx, "src/main.go", false)
//
// Paths outside the resolution root are reported as not visible rather than
// as errors.
package visibility
