// Package host defines the capability interfaces of the editing
// environment behind the gateway.
//
// Environment is the mandatory workspace surface; Editor, Commander,
// Popups and Deployer are optional and discovered by type assertion. A
// missing optional capability maps to 410 Gone at the HTTP layer, which
// tells clients the feature exists but this environment does not provide
// it.
//
// Local is a directory-backed implementation of all of them, useful for
// running the gateway standalone and in tests.
package host
