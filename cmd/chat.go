package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Vishruth-S/Project-Beaver/internal"
	"github.com/spf13/cobra"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat <session-id>",
	Short: "Start an interactive conversation in a session",
	Long: `Open an interactive prompt against a session's collection.

Answers stream in as they are generated. While a rate-limit window is
active, submissions are refused locally with a countdown; the window is
persisted, so it survives restarts. Type /quit to exit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.store.Get(sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("session not found: %s (use 'beaver list' to see sessions)", sessionID)
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("💬 %s", session.Name)))
		fmt.Println(metaStyle.Render(fmt.Sprintf("%d document(s), %d message(s). Type /quit to exit.", session.DocumentCount, len(session.Messages))))
		fmt.Println()

		runner := internal.NewTurnRunner(env.client, env.store, env.limiter)
		scanner := bufio.NewScanner(os.Stdin)

		for {
			if active := printRateLimitNotice(env.limiter); active {
				// Keep polling every second so the window self-clears and
				// the countdown stays current.
				time.Sleep(time.Second)
				continue
			}

			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}
			if input == "/quit" || input == "/exit" {
				break
			}

			result, err := runner.Run(context.Background(), sessionID, input, func(token string) {
				fmt.Print(token)
			})
			if err != nil {
				fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %v", err)))
				continue
			}
			fmt.Println()

			if result.RateLimited {
				continue
			}
			printAnswerMeta(result.Message)
			fmt.Println()
		}

		return scanner.Err()
	},
}

// printRateLimitNotice polls the limiter once and, when active, prints the
// remaining cooldown. Returns whether the window is active.
func printRateLimitNotice(limiter *internal.RateLimiter) bool {
	active, remaining, err := limiter.Poll()
	if err != nil {
		internal.LogWarn("Rate limit poll failed: %v", err)
		return false
	}
	if active {
		fmt.Print(warningStyle.Render(fmt.Sprintf("\r⏳ Rate limited - please wait %s   ", remaining)))
	}
	return active
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
