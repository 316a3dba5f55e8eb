package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sidecarkit/sidecar/internal/cache"
	"github.com/sidecarkit/sidecar/internal/daemon"
	"github.com/sidecarkit/sidecar/internal/ui"
)

var (
	watchCache   string
	watchLogFile string
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Watch a directory and keep the query cache in sync (foreground)",
	Long: `Run the sync daemon in the foreground. The daemon performs an
initial full sync, then watches the directory for sidecar file changes
and mirrors them into the SQLite query cache as they happen.

With --log-file, daemon activity goes to a size-rotated log file
instead of stderr.

Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cachePath := watchCache
		if cachePath == "" {
			cachePath = viper.GetString("cache")
		}
		logFile := watchLogFile
		if logFile == "" {
			logFile = viper.GetString("log-file")
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

		config := daemon.DefaultConfig()
		if logFile != "" {
			config.Logger = log.New(&lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
			}, "[daemon] ", log.LstdFlags)
		}

		d, err := daemon.NewWithConfig(db, args[0], config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating daemon: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Watching %s\n", ui.RenderAccent(">>"), args[0])
		fmt.Printf("   Cache: %s\n", cachePath)
		if logFile != "" {
			fmt.Printf("   Log: %s\n", logFile)
		}
		fmt.Printf("\nPress Ctrl+C to stop\n\n")

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := d.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Daemon stopped with error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchCache, "cache", "", "cache database path (default from config)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "rotate daemon logs to this file (default stderr)")
	rootCmd.AddCommand(watchCmd)
}
