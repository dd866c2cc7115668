package rest

// Endpoint paths relative to the server base URL.
const (
	// PathLogin issues a token for a username/password pair.
	PathLogin = "/login"

	// PathExecuteYAML runs a complete playbook sent as YAML text.
	PathExecuteYAML = "/playbooks/execute/yaml"

	// PathExecuteCommand runs a single structured command.
	PathExecuteCommand = "/command/execute"
)

// Content types.
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/yaml"
)

// HeaderAuthToken carries the bearer token on authenticated requests.
const HeaderAuthToken = "X-Auth-Token"

// QueryDebug enables server-side debug logging for a single run.
const QueryDebug = "debug"
