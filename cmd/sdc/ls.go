package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidecarkit/sidecar"
	"github.com/sidecarkit/sidecar/internal/ui"
)

var lsCmd = &cobra.Command{
	Use:   "ls DIR",
	Short: "List primary files and their sidecar identifiers",
	Long: `List every primary file in a directory together with the
identifiers of its sidecar files.

A file whose name contains "---" is only treated as a sidecar when the
part before the last "---" names another file in the same directory;
otherwise it is listed as a primary in its own right.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		primaries, sidecars, err := sidecar.ListDirectory(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for _, primary := range primaries {
			fmt.Println(primary)
			for _, entry := range sidecars[primary] {
				_, identifier, ok := sidecar.Split(entry)
				if !ok {
					continue
				}
				fmt.Printf("  %s %s\n", ui.RenderAccent("->"), identifier)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
