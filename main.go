package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "mindmeld",
	Short:        "MindMeld word-association game backend",
	SilenceUsage: true,
}

func init() {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config.json"
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "config file (.json or .yaml)")

	importCmd.Flags().Bool("dry-run", false, "parse the file and report without writing")
	wordsCmd.Flags().Bool("json", false, "print the words as a JSON array")

	rootCmd.AddCommand(serveCmd, importCmd, wordsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
