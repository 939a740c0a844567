package cmd

import (
	"fmt"
	"os"

	"commission-tracker/internal/config"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "admin",
	Short:             "Operator commands for the commission tracker",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides CONFIG_PATH)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	zlog.Init()

	if cfgFile != "" {
		if err := os.Setenv("CONFIG_PATH", cfgFile); err != nil {
			return err
		}
	}

	loaded, err := config.MustLoad()
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}
