package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wflores9/StudioBot.ai/internal/ports/adapters/sqlite"
	"github.com/wflores9/StudioBot.ai/internal/types"
)

func newClipsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clips <video-id>",
		Short: "List stored clips for a video, best first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.Open(a.cfg.Paths.DBPath, log.Logger)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.ListClips(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			return printClips(cmd, list)
		},
	}
	cmd.Flags().Bool("json", false, "Print clips as JSON")
	return cmd
}

func printClips(cmd *cobra.Command, list []types.Clip) error {
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no clips")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTART\tEND\tSCORE\tSENTIMENT\tSTATUS\tAPPROVED\tREASON")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%s\t%s\t%t\t%s\n",
			c.ID, c.StartTime, c.EndTime, c.Score, c.Sentiment, c.Status, c.Approved, c.Reason)
	}
	return tw.Flush()
}
