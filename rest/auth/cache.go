package auth

import "strings"

// Identity is the cache key for a server session. It includes the username
// so that two users against the same server never share a token.
type Identity struct {
	ServerURL string
	Username  string
}

// NewIdentity builds an Identity, normalizing the server URL so that
// "https://host/" and "https://host" map to the same entry.
func NewIdentity(serverURL, username string) Identity {
	return Identity{
		ServerURL: strings.TrimRight(serverURL, "/"),
		Username:  username,
	}
}

// String returns "username@serverURL".
func (id Identity) String() string {
	return id.Username + "@" + id.ServerURL
}

// TokenCache maps server identities to bearer tokens.
//
// There is no expiry tracking: a token is assumed valid until a request
// using it is rejected, at which point the caller invalidates it.
// TokenCache is not safe for concurrent use; see the package documentation.
type TokenCache struct {
	tokens map[Identity]string
}

// NewTokenCache creates an empty TokenCache.
func NewTokenCache() *TokenCache {
	return &TokenCache{tokens: make(map[Identity]string)}
}

var defaultCache = NewTokenCache()

// DefaultTokenCache returns the process-wide cache used by clients that were
// not given one explicitly.
func DefaultTokenCache() *TokenCache {
	return defaultCache
}

// Get returns the cached token for id.
func (c *TokenCache) Get(id Identity) (string, bool) {
	token, ok := c.tokens[id]
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Put stores token for id, replacing any previous value.
func (c *TokenCache) Put(id Identity, token string) {
	if c.tokens == nil {
		c.tokens = make(map[Identity]string)
	}
	c.tokens[id] = token
}

// Invalidate removes the token for id. It is a no-op if none is cached.
func (c *TokenCache) Invalidate(id Identity) {
	delete(c.tokens, id)
}

// Len returns the number of cached tokens.
func (c *TokenCache) Len() int {
	return len(c.tokens)
}
