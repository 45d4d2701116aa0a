package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quizlens/internal/app"
	"quizlens/internal/config"
	"quizlens/internal/domain"
	"quizlens/internal/infra/csvstore"
)

// NewLeaderboardCmd prints the most recent attempts.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the latest quiz attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			records, err := csvstore.NewLeaderboard(cfg.Leaderboard.Path).Recent(cmd.Context(), app.LeaderboardSize)
			if errors.Is(err, domain.ErrLeaderboardUnavailable) {
				fmt.Fprintln(cmd.OutOrStdout(), "No data available.")
				return nil
			}
			if err != nil {
				return err
			}
			return printLeaderboard(cmd.OutOrStdout(), records)
		},
	}
}

func printLeaderboard(out io.Writer, records []domain.AttemptRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCORE\tTOPIC\tDIFFICULTY\tDATE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Score, r.Topic, r.Difficulty, r.DateTime)
	}
	return tw.Flush()
}
