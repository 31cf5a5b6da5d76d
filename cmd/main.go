package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/datasynth-backend/internal/app"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "datasynth",
	Short:         "Synthetic learning-platform dataset generator",
	Version:       app.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file (env vars still override it)")
	rootCmd.AddCommand(newServeCmd(), newGenerateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "datasynth:", err)
		os.Exit(1)
	}
}
