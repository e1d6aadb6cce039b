package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tcal/internal/intent"
	"tcal/internal/nl"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <command...>",
		Short: "Run a natural-language command",
		Long: "Sends the command to the configured language model, which maps it to a\n" +
			"create, list, or reschedule intent. The intent is validated before anything\n" +
			"touches the data file; a failed or incomplete intent changes nothing.",
		Example: `  tcal ask "add lunch with Sam tomorrow at noon, catch up on the project"
  tcal ask "what do I have this week"
  tcal ask "push the dentist appointment back two days"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := setup()
			if err != nil {
				return err
			}

			apiKey := cfg.OpenAIAPIKey
			if apiKey == "" {
				apiKey = os.Getenv("OPENAI_API_KEY")
			}
			if apiKey == "" {
				return errors.New("no API key: set openai_api_key in config or OPENAI_API_KEY in the environment")
			}

			client := nl.NewClient(apiKey, cfg.OpenAIModel)
			raw, err := client.Complete(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			parsed, err := intent.Parse(raw)
			if err != nil {
				var incomplete *intent.IncompleteError
				if errors.As(err, &incomplete) {
					return fmt.Errorf("%w; please restate with those details", err)
				}
				return err
			}

			exec := intent.NewExecutor(store, cfg.WeekStartDay())
			result, err := exec.Execute(parsed)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	return cmd
}
