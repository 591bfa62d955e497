// Package acl resolves request credentials into capability-bearing
// identities.
//
// Accounts are configuration data: a name/password pair, a set of boolean
// capability flags (open, write, delete, create, close, execute, activate,
// deploy, anything), glob allow/deny lists for the visibility policy and
// freeform custom values. The Resolver matches HTTP Basic credentials
// against the active accounts in declaration order, or falls back to a
// guest account when one is configured and no accounts demand credentials.
//
// A resolved Identity carries a per-request variable mapping seeded with
// "can_*" capability defaults plus the account's custom values. Handlers
// gate host-environment side effects with Identity.Can; the "anything"
// capability overrides every specific flag. An optional Preparer may
// rewrite the Identity before dispatch continues.
package acl
