// Package rest implements the AttackMate REST API wire protocol.
//
// It knows the endpoint paths, request encodings and response shapes of the
// server, and turns HTTP failures into typed errors. It holds no token state;
// token caching and re-authentication live in the client package.
//
// # Endpoints
//
//	POST /login                    form username/password -> {"access_token": "..."}
//	POST /playbooks/execute/yaml   raw YAML body          -> ExecutionResponse
//	POST /command/execute          JSON command body      -> ExecutionResponse
//
// Authenticated calls carry the token in the X-Auth-Token header. The server
// may return a renewed token in the current_token field of any response.
package rest
