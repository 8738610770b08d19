// Package crawl implements the crawl command, the long-running poll loop.
package crawl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbsaOSS/spot/cmd/common"
	"github.com/AbsaOSS/spot/internal/bootstrap"
)

// Command returns the crawl command.
func Command() *cobra.Command {
	var (
		minEndDate string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Poll the history server for completed runs",
		Long: `This command polls the Spark History Server for completed runs and stores
them with their aggregations until interrupted.

The --min-end-date flag (` + common.TimeLayout + `, UTC) sets the earliest end
time considered by the latest method when the stored watermark is older.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			minEnd, err := common.ParseTime("min-end-date", minEndDate)
			if err != nil {
				return err
			}

			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			ctx, stop := bootstrap.SignalContext(cmd.Context())
			defer stop()

			app, err := bootstrap.NewApp(ctx, deps, bootstrap.Options{MinEndDate: minEnd, Version: common.Version})
			if err != nil {
				return fmt.Errorf("failed to start crawler: %w", err)
			}
			if once {
				return app.RunOnce(ctx)
			}
			return app.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&minEndDate, "min-end-date", "", "earliest run end time for the latest method")
	cmd.Flags().BoolVar(&once, "once", false, "run a single poll cycle and exit")

	return cmd
}
