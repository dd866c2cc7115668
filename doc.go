// Package attackmate is a Go client for the remote AttackMate REST API.
//
// AttackMate executes security-testing playbooks. This module drives a
// remote AttackMate server over HTTPS: it logs in, caches the bearer token
// per server and user, sends playbooks or single commands, and keeps the
// cache current when the server renews or rejects a token.
//
// # Architecture
//
// The library is organized into layers:
//
//	┌──────────────────────────────────────────────────────────┐
//	│  client/          Remote client: token handling, results │
//	├──────────────────────────────────────────────────────────┤
//	│  command/         Structured AttackMate commands         │
//	├──────────────────────────────────────────────────────────┤
//	│  rest/            Endpoints, wire types, API errors      │
//	│  rest/auth/       Credentials and the token cache        │
//	│  rest/transport/  HTTPS transport (CA trust, timeouts)   │
//	└──────────────────────────────────────────────────────────┘
//
// cmd/attackmate-client is the command-line front end.
//
// # Quick Start
//
//	cfg := client.DefaultConfig()
//	cfg.Username = "admin"
//	cfg.Password = os.Getenv("ATTACKMATE_PASSWORD")
//	cfg.CACert = "ca.pem"
//
//	c, err := client.New("https://localhost:8445", cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := c.ExecutePlaybookYAML(playbookYAML, false)
//	if result == nil {
//	    log.Fatal("execution failed, see logs")
//	}
//	fmt.Println(result.Success, result.Message)
package attackmate
