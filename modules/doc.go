// Package modules contains the built-in endpoint modules of the gateway.
//
// Each module answers under the path segment its Name returns and
// implements one method interface per HTTP verb it supports; the resolver
// turns a missing verb into 405. Modules are thin capability-gated leaves
// over the host environment's interfaces: a capability the caller lacks is
// 403, an optional host capability the environment lacks is 410, and a
// resource hidden by the visibility policy is a plain 404.
package modules
