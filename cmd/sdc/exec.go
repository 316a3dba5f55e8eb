package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sidecarkit/sidecar"
)

var execCmd = &cobra.Command{
	Use:   "exec DIR IDENTIFIER -- COMMAND [ARGS...]",
	Short: "Run a command once per primary file",
	Long: `Run a command for every primary file in a directory. The command is
responsible for all sidecar I/O, including checking whether the sidecar
already exists.

Placeholders in the command arguments are substituted per file:
  {}         the primary file's path
  {sidecar}  the path its sidecar for IDENTIFIER would have

Without placeholders, both paths are appended as trailing arguments.
The first failing command aborts the traversal.

Example:
  sdc exec ./photos exif.json -- extract-exif {} {sidecar}`,
	Args: func(cmd *cobra.Command, args []string) error {
		if cmd.ArgsLenAtDash() != 2 {
			return fmt.Errorf("expected DIR and IDENTIFIER before --")
		}
		if len(args) < 3 {
			return fmt.Errorf("expected a command after --")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		dir, identifier := args[0], args[1]
		command := args[2:]

		err := sidecar.Process(dir, identifier, func(primaryPath, sidecarPath string) error {
			argv := buildArgv(command, primaryPath, sidecarPath)

			// #nosec G204 - command comes from the operator's own CLI invocation
			c := exec.Command(argv[0], argv[1:]...)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("command failed for %s: %w", primaryPath, err)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// buildArgv substitutes the {} and {sidecar} placeholders into the
// command. When no placeholder is present, the primary and sidecar
// paths are appended as trailing arguments.
func buildArgv(command []string, primaryPath, sidecarPath string) []string {
	argv := make([]string, len(command))
	substituted := false
	for i, arg := range command {
		replaced := strings.ReplaceAll(arg, "{sidecar}", sidecarPath)
		replaced = strings.ReplaceAll(replaced, "{}", primaryPath)
		if replaced != arg {
			substituted = true
		}
		argv[i] = replaced
	}

	if !substituted {
		argv = append(argv, primaryPath, sidecarPath)
	}
	return argv
}

func init() {
	rootCmd.AddCommand(execCmd)
}
