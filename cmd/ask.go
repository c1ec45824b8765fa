package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vishruth-S/Project-Beaver/internal"
	"github.com/spf13/cobra"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <session-id> <question>",
	Short: "Ask a single question against a session's collection",
	Long: `Ask one question and stream the answer to stdout.

Both the question and the answer are appended to the session transcript.
Prior turns (up to the configured history window) are sent as context.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		question := strings.Join(args[1:], " ")

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		runner := internal.NewTurnRunner(env.client, env.store, env.limiter)

		result, err := runner.Run(context.Background(), sessionID, question, func(token string) {
			fmt.Print(token)
		})
		if err != nil {
			return err
		}
		fmt.Println()

		if result.RateLimited {
			_, remaining, _ := env.limiter.Poll()
			fmt.Println(warningStyle.Render(fmt.Sprintf("⚠️  Rate limit reached. Try again in %s.", remaining)))
			return nil
		}

		printAnswerMeta(result.Message)
		return nil
	},
}

// printAnswerMeta prints confidence and sources for a settled answer.
func printAnswerMeta(msg *internal.Message) {
	if msg == nil {
		return
	}
	if msg.Confidence != nil {
		fmt.Println(metaStyle.Render(fmt.Sprintf("Confidence: %.2f", *msg.Confidence)))
	}
	if len(msg.Sources) > 0 {
		fmt.Println(metaStyle.Render("Sources:"))
		for _, src := range msg.Sources {
			if src.Section != "" {
				fmt.Println(metaStyle.Render(fmt.Sprintf("  • %s (%s)", src.Source, src.Section)))
			} else {
				fmt.Println(metaStyle.Render(fmt.Sprintf("  • %s", src.Source)))
			}
		}
	}
	if len(msg.SuggestedURLs) > 0 {
		fmt.Println(metaStyle.Render("Suggested URLs to ingest:"))
		for _, url := range msg.SuggestedURLs {
			fmt.Println(metaStyle.Render(fmt.Sprintf("  • %s", url)))
		}
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
}
