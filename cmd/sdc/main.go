// Command sdc manages sidecar metadata files: auxiliary files stored
// next to primary data files as {primary}---{identifier}.
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:     "sdc",
	Short:   "Sidecar metadata toolkit",
	Version: version,
	Long: `sdc manages sidecar metadata files.

A sidecar file lives next to its primary data file and is named
{primary}---{identifier}, e.g. photo.jpg---tags.json. The identifier's
extension selects the serialization format (json, yaml, toml).

Configuration is read from $HOME/.config/sdc/config.{yaml,toml,json}
and SDC_* environment variables.`,
}

func initConfig() {
	viper.SetConfigName("config")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "sdc"))
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SDC")
	viper.AutomaticEnv()

	viper.SetDefault("save-interval", 10)
	viper.SetDefault("cache", filepath.Join(".sidecar", "cache.db"))
	viper.SetDefault("log-file", "")

	// Missing config file is fine, defaults apply
	_ = viper.ReadInConfig()
}

func main() {
	cobra.OnInitialize(initConfig)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
