// Package cmd implements the command-line interface of spot.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AbsaOSS/spot/cmd/common"
	"github.com/AbsaOSS/spot/cmd/crawl"
	"github.com/AbsaOSS/spot/cmd/stats"
	"github.com/AbsaOSS/spot/cmd/window"
)

// rootCmd represents the root command for the spot CLI.
var rootCmd = &cobra.Command{
	Use:   "spot",
	Short: "Spark history crawler",
	Long: `spot collects completed Spark applications from a Spark History Server,
computes per-attempt aggregations and stores both in Elasticsearch.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := bindFlags(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String(common.KeyConfig, "", "config file (env SPOT_CONFIG)")
	rootCmd.PersistentFlags().Bool(common.KeyDebug, false, "enable debug logging (env APP_DEBUG)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spot version %s\n", common.Version)
		},
	})

	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(window.Command())
	rootCmd.AddCommand(stats.Command())
}

// bindFlags binds the persistent flags and their environment variables.
func bindFlags() error {
	if err := viper.BindPFlag(common.KeyConfig, rootCmd.PersistentFlags().Lookup(common.KeyConfig)); err != nil {
		return fmt.Errorf("failed to bind config flag: %w", err)
	}
	if err := viper.BindPFlag(common.KeyDebug, rootCmd.PersistentFlags().Lookup(common.KeyDebug)); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if err := viper.BindEnv(common.KeyConfig, "SPOT_CONFIG"); err != nil {
		return fmt.Errorf("failed to bind SPOT_CONFIG: %w", err)
	}
	if err := viper.BindEnv(common.KeyDebug, "APP_DEBUG"); err != nil {
		return fmt.Errorf("failed to bind APP_DEBUG: %w", err)
	}
	return nil
}
