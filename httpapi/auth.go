package httpapi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Authorizer verifies a request's caller. Token issuance lives outside
// this system; the API only consumes the verdict: an identity string
// and whether the caller is authorized.
type Authorizer interface {
	Authorize(r *http.Request) (identity string, ok bool)
}

// StaticTokenAuthorizer accepts a single pre-shared bearer token.
type StaticTokenAuthorizer struct {
	tokenDigest [sha256.Size]byte
	identity    string
}

// NewStaticTokenAuthorizer creates an authorizer for one token. The
// identity is reported for every accepted request.
func NewStaticTokenAuthorizer(token, identity string) *StaticTokenAuthorizer {
	if identity == "" {
		identity = "api-client"
	}
	return &StaticTokenAuthorizer{
		tokenDigest: sha256.Sum256([]byte(token)),
		identity:    identity,
	}
}

// Authorize checks the Authorization bearer token. Digests are compared
// in constant time.
func (a *StaticTokenAuthorizer) Authorize(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}

	digest := sha256.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(digest[:], a.tokenDigest[:]) != 1 {
		return "", false
	}
	return a.identity, true
}

// AllowAll authorizes every request. For local development only.
type AllowAll struct{}

// Authorize accepts unconditionally.
func (AllowAll) Authorize(*http.Request) (string, bool) {
	return "anonymous", true
}
