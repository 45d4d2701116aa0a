package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quizlens/internal/config"
	"quizlens/internal/domain"
	"quizlens/internal/infra/sqlite"
	"quizlens/internal/llm"
)

// NewLLMLogCmd lists recent model calls from the event log.
func NewLLMLogCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "llm-log",
		Short: "Show recent model calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			events, err := sqlite.Open(cfg.EventLog.Path)
			if err != nil {
				return err
			}
			defer events.Close()

			recent, err := events.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), recent)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of events to show")
	return cmd
}

func printEvents(out io.Writer, events []llm.Event) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPURPOSE\tMODEL\tLATENCY\tTOKENS IN/OUT\tSTATUS")
	for _, e := range events {
		status := "ok"
		if !e.Success {
			status = e.ErrorMessage
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dms\t%d/%d\t%s\n",
			e.CreatedAt.Local().Format(domain.DateTimeLayout), e.Purpose, e.Model, e.LatencyMs, e.InputTokens, e.OutputTokens, status)
	}
	return tw.Flush()
}
