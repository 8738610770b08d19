// Package window implements the window command, which processes one
// explicit time window and exits.
package window

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbsaOSS/spot/cmd/common"
	"github.com/AbsaOSS/spot/internal/bootstrap"
)

var errWindowRequired = errors.New("--from and --to are required")

// Command returns the window command.
func Command() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Process runs that completed within a time window",
		Long: `This command processes every run that completed between --from and --to
(` + common.TimeLayout + `, UTC) that the sink does not hold yet, then exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := common.ParseTime("from", from)
			if err != nil {
				return err
			}
			end, err := common.ParseTime("to", to)
			if err != nil {
				return err
			}
			if start == nil || end == nil {
				return errWindowRequired
			}

			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			ctx, stop := bootstrap.SignalContext(cmd.Context())
			defer stop()

			app, err := bootstrap.NewApp(ctx, deps, bootstrap.Options{Version: common.Version})
			if err != nil {
				return fmt.Errorf("failed to start crawler: %w", err)
			}
			return app.RunWindow(ctx, *start, *end)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "window start")
	cmd.Flags().StringVar(&to, "to", "", "window end")

	return cmd
}
