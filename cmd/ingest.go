package cmd

import (
	"context"
	"fmt"

	"github.com/Vishruth-S/Project-Beaver/internal"
	"github.com/spf13/cobra"
)

var ingestName string

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <url>...",
	Short: "Ingest documentation URLs into a new collection",
	Long: `Submit one or more documentation URLs to the backend for indexing.

On success a new chat session is created for the collection and its id is
printed; use it with 'beaver chat' or 'beaver ask'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		name := ingestName
		if name == "" {
			name = args[0]
		}

		fmt.Printf("Ingesting %d URL(s) into collection %q...\n", len(args), name)

		resp, err := env.client.Ingest(context.Background(), internal.IngestRequest{
			URLs:           args,
			CollectionName: name,
		})
		if err != nil {
			return err
		}

		session, err := env.store.Create(args, resp.CollectionID, name, resp.DocumentsIngested, resp.PendingURLsCount)
		if err != nil {
			return fmt.Errorf("ingested but failed to create session: %w", err)
		}

		fmt.Println(successStyle.Render("✅ Collection ready"))
		fmt.Printf("   Session:   %s\n", session.SessionID)
		fmt.Printf("   Documents: %d ingested, %d parsed\n", resp.DocumentsIngested, resp.DocumentsParsed)
		if resp.PendingURLsCount > 0 {
			fmt.Printf("   Pending:   %d URL(s) queued for lazy loading\n", resp.PendingURLsCount)
		}
		fmt.Printf("\nStart chatting with: beaver chat %s\n", session.SessionID)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestName, "name", "n", "", "Display name for the collection (defaults to the first URL)")
	rootCmd.AddCommand(ingestCmd)
}
