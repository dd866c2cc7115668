package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smnsjas/go-attackmate/command"
)

func newCommandCmd(a *app) *cobra.Command {
	var (
		debug bool
		file  string
		shell string
	)

	cmd := &cobra.Command{
		Use:   "command (--shell <cmd> | --file <command.yml>)",
		Short: "Execute a single AttackMate command on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadCommand(file, shell)
			if err != nil {
				return err
			}

			cl, err := a.newClient()
			if err != nil {
				return err
			}

			action := fmt.Sprintf("Command Execution (%s)", c.Type())
			result, err := cl.ExecuteCommandContext(cmd.Context(), c, debug)
			if err != nil {
				a.logger.Error(action+" failed. See logs above for details.", "error", err)
			}
			return printResult(a.stdout, result, action)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable server debug logging for this execution")
	cmd.Flags().StringVar(&file, "file", "", "YAML file holding one command mapping (must include type)")
	cmd.Flags().StringVar(&shell, "shell", "", "Run this shell command")
	cmd.MarkFlagsMutuallyExclusive("file", "shell")
	return cmd
}

// loadCommand builds a command from --shell or a YAML command file.
func loadCommand(file, shell string) (command.Command, error) {
	switch {
	case shell != "":
		return &command.Shell{Cmd: shell}, nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read command file: %w", err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("command file %s is not a YAML mapping: %w", file, err)
		}
		return command.Raw(raw), nil
	default:
		return nil, errors.New("one of --shell or --file is required")
	}
}
