package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var addURLsLabel string

// addURLsCmd represents the add-urls command
var addURLsCmd = &cobra.Command{
	Use:   "add-urls <session-id> <url>...",
	Short: "Add documentation URLs to an existing session's collection",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		urls := args[1:]

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
			return fmt.Errorf("session not found: %s", sessionID)
		}

		fmt.Printf("Adding %d URL(s) to collection %q...\n", len(urls), session.Name)

		resp, err := env.client.AddURLs(context.Background(), session.CollectionID, map[string][]string{
			addURLsLabel: urls,
		})
		if err != nil {
			return err
		}

		updated, err := env.store.UpdateURLs(sessionID, urls, resp.TotalDocuments)
		if err != nil {
			return err
		}
		if updated == nil {
			return fmt.Errorf("session disappeared during update: %s", sessionID)
		}

		fmt.Println(successStyle.Render("✅ URLs added"))
		fmt.Printf("   Added:     %d URL(s)\n", resp.URLsAdded)
		fmt.Printf("   Documents: %d total in collection\n", updated.DocumentCount)
		fmt.Printf("   URLs:      %d tracked in session\n", len(updated.URLs))
		return nil
	},
}

func init() {
	addURLsCmd.Flags().StringVarP(&addURLsLabel, "label", "l", "Docs", "Label to group the new URLs under")
	rootCmd.AddCommand(addURLsCmd)
}
