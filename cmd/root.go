package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront - small shop site with an admin dashboard",
	Long:  "A single-tenant storefront serving products, pages and site settings stored as JSON documents.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		return err
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-mode", "", "Logger mode: development or production (default from $LOG_MODE)")
}

// applyLogFlags lets flags override the environment.
func applyLogFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("log-mode"); v != "" {
		cfg.Logger.Mode = v
	}
}
