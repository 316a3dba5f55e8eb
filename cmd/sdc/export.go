package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidecarkit/sidecar/export"
	"github.com/sidecarkit/sidecar/internal/ui"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export DIR IDENTIFIER",
	Short: "Export a directory's sidecar metadata as CSV",
	Long: `Collect the metadata of every sidecar with the given identifier in
a directory and write it as CSV, one row per sidecar found. Columns are
the union of all metadata keys. Sidecars with absent or empty metadata
are skipped with a warning on stderr.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		table, err := export.Collect(args[0], args[1], os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			w = f
		}

		if err := table.WriteCSV(w); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}

		if exportOut != "" {
			fmt.Printf("%s Exported %d rows to %s\n",
				ui.RenderPass("ok"), len(table.Rows), exportOut)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write CSV to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
