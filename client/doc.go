// Package client provides the high-level API for running AttackMate
// playbooks on a remote server.
//
// This is the recommended entry point for most users. It handles:
//   - Token acquisition (login) and reuse across client instances
//   - Token invalidation when the server rejects a request
//   - Capturing renewed tokens returned by the server
//   - Normalizing every failure into a nil result plus a log entry
//
// # Quick Start
//
//	cfg := client.DefaultConfig()
//	cfg.Username = "admin"
//	cfg.Password = "password"
//	cfg.CACert = "/etc/attackmate/ca.pem"
//
//	c, err := client.New("https://localhost:8445", cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := c.ExecutePlaybookYAML(playbookYAML, false)
//	if result == nil {
//	    // request failed; see logs
//	}
//
// # Failure Reporting
//
// ExecutePlaybookYAML and ExecuteCommand return nil on any failure and log
// the cause. A non-nil Result only means the server answered; check
// Result.Success for the playbook outcome. Callers that need to branch on
// the failure kind use the *Context variants, which return errors matching
// ErrAuthentication, ErrTokenExpired, ErrNetwork, ErrTimeout, ErrServer,
// ErrMalformedResponse or ErrNoCredentials.
//
// # Retries
//
// A call performs at most one login and one action request. When the server
// rejects a cached token with 401 the token is evicted and the call fails;
// the next call logs in again. There is no automatic retry within a call.
//
// # Token Sharing
//
// Clients share tokens through an *auth.TokenCache. Clients created without
// Config.Cache use auth.DefaultTokenCache, so two clients for the same server
// and username reuse one login. The cache is not safe for concurrent use:
// serialize calls from multiple goroutines or give each goroutine its own
// cache.
package client
