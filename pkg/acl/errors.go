package acl

import "errors"

// ErrUnauthorized is returned for missing, malformed or mismatched
// credentials. It is deliberately the only resolution failure, so responses
// never leak which part of a credential was wrong.
var ErrUnauthorized = errors.New("acl: unauthorized")
