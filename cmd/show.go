package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/Vishruth-S/Project-Beaver/internal"
	"github.com/spf13/cobra"
)

var showLimit int

var (
	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the transcript of a session",
	Long:  `Display the messages of a saved chat session.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.store.Get(args[0])
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("session not found: %s", args[0])
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("💬 %s", session.Name)))
		fmt.Println(metaStyle.Render(fmt.Sprintf("Session %s · collection %s · %d document(s) · created %s",
			session.SessionID, session.CollectionID, session.DocumentCount,
			session.CreatedAt.Format("2006-01-02"))))
		fmt.Println()

		messages := session.Messages
		if showLimit > 0 && len(messages) > showLimit {
			fmt.Println(metaStyle.Render(fmt.Sprintf("(showing last %d of %d messages)", showLimit, len(messages))))
			messages = messages[len(messages)-showLimit:]
		}

		for _, msg := range messages {
			label := userMessageStyle.Render("You")
			if msg.Role == internal.RoleAssistant {
				label = assistantMessageStyle.Render("Assistant")
			}
			ts := ""
			if !msg.Timestamp.IsZero() {
				ts = metaStyle.Render(" " + msg.Timestamp.Format(time.RFC3339))
			}
			fmt.Println(label + ts)
			fmt.Println(messageContentStyle.Render(msg.Text))
			if msg.Confidence != nil {
				fmt.Println(metaStyle.Render(fmt.Sprintf("  confidence %.2f, %d source(s)", *msg.Confidence, len(msg.Sources))))
			}
		}

		return nil
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 0, "Show only the last N messages (0 = all)")
	rootCmd.AddCommand(showCmd)
}
