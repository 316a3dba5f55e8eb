package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sidecarkit/sidecar"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich DIR IDENTIFIER -- COMMAND [ARGS...]",
	Short: "Run an enrichment command per primary file, checkpointing its output",
	Long: `Run a command for every primary file in a directory and stream its
output into the file's sidecar.

The command receives the sidecar's current metadata as one JSON object
on stdin and must write successive replacement states to stdout, one
JSON object per line. Every save-interval-th state is persisted to the
sidecar immediately, and the final state is always persisted, so a long
run loses at most save-interval - 1 states if interrupted. A command
that emits nothing leaves the sidecar untouched.

Placeholder {} in the command arguments is replaced with the primary
file's path; without it, the path is appended as a trailing argument.

Example:
  sdc enrich ./scans ocr.json --save-interval 5 -- ocr-tool --input {}`,
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

		var runErr error
		fn := func(primaryPath string, initial sidecar.Record) iter.Seq[sidecar.Record] {
			return func(yield func(sidecar.Record) bool) {
				// A failed command aborts the batch: later primaries
				// are skipped, already-persisted checkpoints remain.
				if runErr != nil {
					return
				}
				runErr = streamCommand(command, primaryPath, initial, yield)
			}
		}

		opts := &sidecar.UpdateOptions{SaveInterval: viper.GetInt("save-interval")}
		if err := sidecar.UpdateAndStore(dir, identifier, fn, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
			os.Exit(1)
		}
	},
}

// streamCommand runs one enrichment command and yields each JSON state
// it prints. Returns the first command or decode error; states produced
// before the error have already been yielded (and checkpointed by the
// driver).
func streamCommand(command []string, primaryPath string, initial sidecar.Record, yield func(sidecar.Record) bool) error {
	argv := buildCommandArgs(command, primaryPath)

	// #nosec G204 - command comes from the operator's own CLI invocation
	c := exec.Command(argv[0], argv[1:]...)
	c.Stderr = os.Stderr

	stdin, err := c.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := c.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}

	go func() {
		_ = json.NewEncoder(stdin).Encode(initial)
		_ = stdin.Close()
	}()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var state sidecar.Record
		if err := json.Unmarshal(line, &state); err != nil {
			_ = c.Process.Kill()
			_ = c.Wait()
			return fmt.Errorf("invalid state from command for %s: %w", primaryPath, err)
		}

		if !yield(state) {
			_ = c.Process.Kill()
			_ = c.Wait()
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		_ = c.Wait()
		return fmt.Errorf("failed to read command output: %w", err)
	}

	if err := c.Wait(); err != nil {
		return fmt.Errorf("command failed for %s: %w", primaryPath, err)
	}
	return nil
}

// buildCommandArgs substitutes {} with the primary path, or appends it
// when no placeholder is present.
func buildCommandArgs(command []string, primaryPath string) []string {
	argv := make([]string, len(command))
	substituted := false
	for i, arg := range command {
		if arg == "{}" {
			argv[i] = primaryPath
			substituted = true
			continue
		}
		argv[i] = arg
	}

	if !substituted {
		argv = append(argv, primaryPath)
	}
	return argv
}

func init() {
	enrichCmd.Flags().Int("save-interval", 10, "persist every Nth produced state")
	_ = viper.BindPFlag("save-interval", enrichCmd.Flags().Lookup("save-interval"))
	rootCmd.AddCommand(enrichCmd)
}
