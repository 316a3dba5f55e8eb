package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sidecarkit/sidecar/internal/cache"
	"github.com/sidecarkit/sidecar/internal/syncer"
	"github.com/sidecarkit/sidecar/internal/ui"
)

var syncCache string

var syncCmd = &cobra.Command{
	Use:   "sync DIR",
	Short: "Full sync of a directory's sidecars into the query cache",
	Long: `Read every sidecar file in a directory and mirror its metadata into
the SQLite query cache. The filesystem stays the source of truth; the
cache is derived data and safe to delete and rebuild.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cachePath := syncCache
		if cachePath == "" {
			cachePath = viper.GetString("cache")
		}

		db, err := cache.Open(cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening cache database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing schema: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Syncing %s...\n", ui.RenderAccent(">>"), args[0])
		start := time.Now()

		result, err := syncer.New(db, nil).FullSync(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error during sync: %v\n", err)
			os.Exit(1)
		}

		elapsed := time.Since(start)
		total, _ := db.Count()

		fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("ok"), elapsed.Round(time.Millisecond))
		fmt.Printf("   Synced: %d\n", result.Synced)
		fmt.Printf("   Skipped: %d\n", result.Skipped)
		if result.Failed > 0 {
			fmt.Printf("   %s Failed: %d\n", ui.RenderWarn("!"), result.Failed)
		}
		fmt.Printf("   Cached rows: %d\n", total)
		fmt.Printf("   Cache: %s\n", cachePath)
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncCache, "cache", "", "cache database path (default from config)")
	rootCmd.AddCommand(syncCmd)
}
