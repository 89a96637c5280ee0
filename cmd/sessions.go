package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect stored interview sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.engine.List(context.Background(), limit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCLIENT\tSTATUS\tQUESTIONS\tUPDATED")
		for _, s := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.ClientName, s.Status, s.QuestionCount, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's progress, settled topics and documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.engine.Get(ctx, args[0])
		if err != nil {
			return err
		}
		v := s.View()
		fmt.Printf("Session %s (created %s)\n", v.ID, v.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("  Progress:  %.2f%% after %d question(s)\n", v.Progress.Percent, v.Progress.QuestionCount)
		if len(v.MissingFoundation) > 0 {
			fmt.Printf("  Missing:   %s\n", strings.Join(v.MissingFoundation, ", "))
		}
		if len(v.SelectedFeatures) > 0 {
			fmt.Printf("  Features:  %s\n", strings.Join(v.SelectedFeatures, ", "))
		}
		if len(v.Closure.Closed) > 0 {
			fmt.Printf("  Settled:   %s\n", strings.Join(v.Closure.Closed, ", "))
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\n  SECTION\tCOVERAGE")
		for _, sec := range v.Progress.Sections {
			fmt.Fprintf(tw, "  %s\t%d/%d\n", sec.Title, sec.Known, sec.Expected)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		stored, err := a.engine.Store().ListDocuments(ctx, s.ID)
		if err != nil {
			return err
		}
		for _, d := range stored {
			fmt.Printf("  Document v%d: score %d, %s\n", d.Version, d.Score, d.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().Int("limit", 20, "maximum sessions to list")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}
