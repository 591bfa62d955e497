package acl

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
)

// Resolver turns raw request credentials into an authenticated Identity.
//
// Accounts are iterated in declaration order; when several share a
// username, the first whose password matches wins. The guest account, when
// configured, only applies if no accounts are declared and no credentials
// were supplied.
type Resolver struct {
	accounts []*Account
	guest    *Account // nil = guest access disabled
}

// NewResolver creates a resolver over the configured accounts.
// guest may be nil to disable unauthenticated access.
func NewResolver(accounts []*Account, guest *Account) *Resolver {
	return &Resolver{
		accounts: accounts,
		guest:    guest,
	}
}

// Resolve implements the credential algorithm: decode Basic credentials if
// present, require an account match when accounts are configured or
// credentials were supplied, fall back to the guest identity otherwise.
// Every failure maps to ErrUnauthorized; the error never reveals which part
// of the credential was wrong.
func (r *Resolver) Resolve(header http.Header) (*Identity, error) {
	username, password, supplied, err := basicCredentials(header)
	if err != nil {
		return nil, err
	}

	active := r.activeAccounts()

	if len(active) > 0 || supplied {
		if !supplied {
			return nil, ErrUnauthorized
		}
		for _, acc := range active {
			if !strings.EqualFold(strings.TrimSpace(acc.Name), username) {
				continue
			}
			if subtle.ConstantTimeCompare([]byte(acc.Password), []byte(password)) == 1 {
				return NewIdentity(acc, false), nil
			}
		}
		return nil, ErrUnauthorized
	}

	if r.guest != nil {
		return NewIdentity(r.guest, true), nil
	}

	return nil, ErrUnauthorized
}

// activeAccounts filters the configured accounts to the active ones,
// preserving declaration order.
func (r *Resolver) activeAccounts() []*Account {
	out := make([]*Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		if acc != nil && acc.IsActive {
			out = append(out, acc)
		}
	}
	return out
}

// basicCredentials extracts and decodes an "Authorization: Basic" header.
// Returns supplied=false when no Basic credentials are present. A present
// but malformed header is an authentication failure, not an absence.
func basicCredentials(header http.Header) (username, password string, supplied bool, err error) {
	auth := strings.TrimSpace(header.Get("Authorization"))
	if auth == "" {
		return "", "", false, nil
	}

	const prefix = "basic "
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", "", false, nil
	}

	raw, decodeErr := base64.StdEncoding.DecodeString(strings.TrimSpace(auth[len(prefix):]))
	if decodeErr != nil {
		return "", "", true, ErrUnauthorized
	}

	name, pass, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", true, ErrUnauthorized
	}

	return strings.TrimSpace(strings.ToLower(name)), pass, true, nil
}
