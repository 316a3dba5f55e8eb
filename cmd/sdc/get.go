package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidecarkit/sidecar"
	"github.com/sidecarkit/sidecar/internal/ui"
)

var getCmd = &cobra.Command{
	Use:   "get FILE IDENTIFIER",
	Short: "Print one sidecar's metadata as JSON",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		handler := sidecar.NewHandlerLazy(args[0])

		rec, err := handler.Get(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if rec == nil {
			fmt.Fprintf(os.Stderr, "%s No %s metadata for %s\n",
				ui.RenderWarn("!"), args[1], args[0])
			os.Exit(1)
		}

		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
