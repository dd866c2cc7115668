package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPlaybookCmd(a *app) *cobra.Command {
	var (
		debug          bool
		skipValidation bool
	)

	cmd := &cobra.Command{
		Use:   "playbook <file>",
		Short: "Execute a local playbook YAML file on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			content, err := readPlaybook(path, !skipValidation)
			if err != nil {
				a.logger.Error("cannot load playbook", "file", path, "error", err)
				return &exitError{msg: err.Error()}
			}

			c, err := a.newClient()
			if err != nil {
				return err
			}

			action := fmt.Sprintf("Playbook Execution (YAML: %s)", path)
			result, err := c.ExecutePlaybookYAMLContext(cmd.Context(), content, debug)
			if err != nil {
				a.logger.Error(action+" failed. See logs above for details.", "error", err)
			}
			return printResult(a.stdout, result, action)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable server debug logging for this execution")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Send the file even if it is not well-formed YAML")
	return cmd
}

// readPlaybook reads a playbook file and, when validate is set, checks it
// parses as YAML. The playbook is sent as text, not as the parsed value.
func readPlaybook(path string, validate bool) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("local playbook file not found: %s", path)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if validate {
		var doc any
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return "", fmt.Errorf("playbook %s is not valid YAML: %w", path, err)
		}
	}
	return string(b), nil
}
