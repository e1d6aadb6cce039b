package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tcal/internal/daterange"
	"tcal/internal/task"
)

func newListCmd() *cobra.Command {
	var (
		rangeToken string
		keyword    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a named range",
		Example: `  tcal list
  tcal list --range this_week
  tcal list --range all --keyword report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := setup()
			if err != nil {
				return err
			}

			r, err := daterange.Resolve(rangeToken, time.Now(), cfg.WeekStartDay())
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, strings.Join(daterange.Tokens, ", "))
			}
			tasks, err := store.QueryRange(r.Start, r.End, keyword)
			if err != nil {
				return err
			}

			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
				return nil
			}
			for _, t := range tasks {
				line := fmt.Sprintf("%s  %s", task.FormatDateTime(t.Trigger), t.Outcome)
				if t.Impact != "" {
					line += "  (" + t.Impact + ")"
				}
				if t.Bucket != "" {
					line += "  [" + t.Bucket + "]"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rangeToken, "range", "today", "named range ("+strings.Join(daterange.Tokens, ", ")+")")
	cmd.Flags().StringVar(&keyword, "keyword", "", "substring filter over outcome and impact")
	return cmd
}
