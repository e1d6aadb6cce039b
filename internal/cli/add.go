package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"tcal/internal/task"
)

func newAddCmd() *cobra.Command {
	var (
		when    string
		outcome string
		impact  string
		bucket  string
		p, q, r float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Example: `  tcal add --when "2026-09-01 09:00" --outcome "Write report" --impact "Quarterly review ready"
  tcal add --when 2026-09-01 --outcome Standup --impact "Team synced" --bucket thing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := setup()
			if err != nil {
				return err
			}

			trigger, err := task.ParseDateTime(when)
			if err != nil {
				return err
			}
			t := task.Task{
				Trigger: trigger,
				Outcome: outcome,
				Impact:  impact,
				Bucket:  bucket,
			}
			// Scores only count when the flag was given; zero is a real value.
			if cmd.Flags().Changed("p") {
				t.P = &p
			}
			if cmd.Flags().Changed("q") {
				t.Q = &q
			}
			if cmd.Flags().Changed("r") {
				t.R = &r
			}

			stored, err := store.Upsert(t, nil)
			if err != nil {
				return err
			}
			return printTask(cmd, stored)
		},
	}

	cmd.Flags().StringVar(&when, "when", "", "trigger timestamp, YYYY-MM-DD [HH:MM[:SS]]")
	cmd.Flags().StringVar(&outcome, "outcome", "", "what gets done")
	cmd.Flags().StringVar(&impact, "impact", "", "why it matters")
	cmd.Flags().StringVar(&bucket, "bucket", "", "bucket (personal_development, thing, economic)")
	cmd.Flags().Float64Var(&p, "p", 0, "p score, 0-10")
	cmd.Flags().Float64Var(&q, "q", 0, "q score, 0-10")
	cmd.Flags().Float64Var(&r, "r", 0, "r score, 0-10")
	_ = cmd.MarkFlagRequired("when")
	_ = cmd.MarkFlagRequired("outcome")
	_ = cmd.MarkFlagRequired("impact")
	return cmd
}

// taskJSON is the scripted-output form of a task.
type taskJSON struct {
	Trigger string   `json:"trigger"`
	Outcome string   `json:"outcome"`
	Impact  string   `json:"impact"`
	Bucket  string   `json:"bucket,omitempty"`
	P       *float64 `json:"p,omitempty"`
	Q       *float64 `json:"q,omitempty"`
	R       *float64 `json:"r,omitempty"`
}

func printTask(cmd *cobra.Command, t task.Task) error {
	out, err := json.MarshalIndent(taskJSON{
		Trigger: task.FormatDateTime(t.Trigger),
		Outcome: t.Outcome,
		Impact:  t.Impact,
		Bucket:  t.Bucket,
		P:       t.P,
		Q:       t.Q,
		R:       t.R,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
