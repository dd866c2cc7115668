// Package command models single AttackMate commands for the structured
// command-execution endpoint.
//
// A Command knows its type name and can serialize itself into the JSON object
// the server expects. Unset optional fields are omitted from the payload.
// Full schema validation is the server's (or an upstream validator's) job;
// Validate on the concrete types only checks required fields.
//
//	cmd := &command.Shell{Cmd: "whoami"}
//	result := c.ExecuteCommand(cmd, false)
package command
