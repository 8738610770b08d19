// Package stats implements the stats command, which prints the size of the
// sink's indices.
package stats

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/AbsaOSS/spot/cmd/common"
	"github.com/AbsaOSS/spot/internal/bootstrap"
	"github.com/AbsaOSS/spot/internal/sink"
)

// Command returns the stats command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print document counts and sizes of the sink indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			defer func() { _ = deps.Logger.Sync() }()

			components, err := bootstrap.SetupSink(cmd.Context(), deps.Config, deps.Logger)
			if err != nil {
				return fmt.Errorf("failed to connect to sink: %w", err)
			}
			stats, err := bootstrap.IndexStats(cmd.Context(), components)
			if err != nil {
				return err
			}
			Render(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

// Render writes stats as a table.
func Render(w io.Writer, stats []sink.IndexStat) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Index", "Documents", "Size"})

	var docs, size int64
	for _, st := range stats {
		t.AppendRow(table.Row{st.Name, humanize.Comma(st.Docs), humanize.IBytes(uint64(max(st.SizeBytes, 0)))})
		docs += st.Docs
		size += st.SizeBytes
	}
	t.AppendFooter(table.Row{"Total", humanize.Comma(docs), humanize.IBytes(uint64(max(size, 0)))})
	t.Render()
}
