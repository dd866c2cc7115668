// Package auth holds the credential and token state used to talk to an
// AttackMate API server.
//
// # Token Cache
//
// A TokenCache maps a server Identity (base URL + username) to the bearer
// token issued by that server. Clients constructed against the same server
// with the same username share the cached token when they share the cache:
//
//	cache := auth.NewTokenCache()
//	id := auth.NewIdentity("https://localhost:8445", "admin")
//	cache.Put(id, "abc123")
//	token, ok := cache.Get(id)
//
// # Thread Safety
//
// TokenCache is NOT safe for concurrent use. It performs no locking so that
// clients in a single goroutine can share tokens without coordination
// overhead. Applications calling from multiple goroutines must serialize
// access themselves, e.g. one cache per goroutine or an external mutex
// around client calls.
package auth
