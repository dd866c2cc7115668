package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/smnsjas/go-attackmate/client"
)

// printResult writes the execution summary. It returns an exitError when
// the result is absent or reports failure.
func printResult(w io.Writer, result *client.Result, action string) error {
	if result == nil {
		return &exitError{msg: action + " failed"}
	}

	message := result.Message
	if message == "" {
		message = "No message."
	}

	fmt.Fprintf(w, "\n--- %s Result ---\n", action)
	fmt.Fprintf(w, "Success: %t\n", result.Success)
	fmt.Fprintf(w, "Message: %s\n", message)

	if vars := result.Variables(); len(vars) > 0 {
		out, err := yaml.Marshal(vars)
		if err != nil {
			return fmt.Errorf("format variables: %w", err)
		}
		fmt.Fprintf(w, "\n--- Final Variable Store State ---\n%s", out)
	}

	if !result.Success {
		return &exitError{msg: action + " reported failure"}
	}
	return nil
}
