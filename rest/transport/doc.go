// Package transport provides the HTTPS transport for the AttackMate REST API.
//
// The transport layer handles:
//   - HTTP/HTTPS connections
//   - TLS trust configuration (system roots or an explicit CA file)
//   - Request timeouts
//   - Status and network error classification
package transport
