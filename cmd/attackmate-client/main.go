// Command attackmate-client runs AttackMate playbooks on a remote server.
//
// Password can be provided via:
//   - --password flag (least secure, visible in process list)
//   - ATTACKMATE_PASSWORD environment variable (recommended)
//   - the password key of a profile file
//   - stdin prompt (if none of the above is set)
//
// Usage:
//
//	attackmate-client playbook <file> --username <user> [--server-url URL] [--cacert FILE] [--debug]
//
// Examples:
//
//	export ATTACKMATE_PASSWORD='secret'
//	attackmate-client playbook scan.yml --username admin --cacert ca.pem
//
//	# Single command
//	attackmate-client command --username admin --shell "id"
//
// Settings are taken from flags, then ATTACKMATE_* environment variables,
// then the TOML profile (--config, ATTACKMATE_CONFIG or
// $XDG_CONFIG_HOME/attackmate/client.toml), then built-in defaults.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	a.getenv = os.Getenv
	if dir, err := os.UserConfigDir(); err == nil {
		a.defaultProfile = filepath.Join(dir, "attackmate", "client.toml")
	}

	err := newRootCmd(a).ExecuteContext(ctx)
	_ = a.close()
	stop()
	if err != nil {
		var exit *exitError
		if !errors.As(err, &exit) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
