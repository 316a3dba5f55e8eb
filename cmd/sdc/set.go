package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sidecarkit/sidecar"
	"github.com/sidecarkit/sidecar/codec"
	"github.com/sidecarkit/sidecar/internal/ui"
)

var setCmd = &cobra.Command{
	Use:   "set FILE IDENTIFIER KEY=VALUE...",
	Short: "Merge key/value pairs into a sidecar",
	Long: `Merge key/value pairs into the sidecar with the given identifier,
creating it if needed. Values that parse as JSON keep their type
(numbers, booleans, arrays); everything else is stored as a string.`,
	Args: cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		handler := sidecar.NewHandlerLazy(args[0])
		identifier := args[1]

		rec, err := handler.Get(identifier)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if rec == nil {
			rec = sidecar.Record{}
		}

		for _, pair := range args[2:] {
			key, value, err := parseKeyValue(pair)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			rec[key] = value
		}

		path := handler.SidecarPath(identifier)
		if err := codec.Store(path, rec); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Wrote %s\n", ui.RenderPass("ok"), path)
	},
}

// parseKeyValue splits a KEY=VALUE argument. JSON-parseable values keep
// their type; everything else is a plain string.
func parseKeyValue(pair string) (string, any, error) {
	key, raw, found := strings.Cut(pair, "=")
	if !found || key == "" {
		return "", nil, fmt.Errorf("invalid argument %q: expected KEY=VALUE", pair)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	return key, value, nil
}

func init() {
	rootCmd.AddCommand(setCmd)
}
