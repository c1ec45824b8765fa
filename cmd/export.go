package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vishruth-S/Project-Beaver/internal"
	"github.com/Vishruth-S/Project-Beaver/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Export session transcripts to file",
	Long: `Export chat transcripts to various formats (jsonl, md, yaml, json).

Without a session id, every session is exported. Use 'beaver list' to see
available session ids.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		var sessions []internal.ChatSession
		if len(args) == 1 {
			session, err := env.store.Get(args[0])
			if err != nil {
				return err
			}
			if session == nil {
				return fmt.Errorf("session not found: %s", args[0])
			}
			sessions = []internal.ChatSession{*session}
		} else {
			sessions, err = env.store.List()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions to export.")
				return nil
			}
		}

		if err := os.MkdirAll(exportOutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		for i := range sessions {
			session := &sessions[i]
			path := filepath.Join(exportOutDir, fmt.Sprintf("%s.%s", session.SessionID, exporter.Extension()))

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			if err := exporter.Export(session, f); err != nil {
				f.Close()
				return fmt.Errorf("failed to export %s: %w", session.SessionID, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("Exported %s → %s\n", session.SessionID, path)
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Exported %d session(s)", len(sessions))))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Export format: jsonl, md, yaml, json")
	exportCmd.Flags().StringVarP(&exportOutDir, "output", "o", ".", "Output directory")
	rootCmd.AddCommand(exportCmd)
}
