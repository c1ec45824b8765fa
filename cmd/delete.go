package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearForce bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Long:  `Delete one saved session and its transcript. The backend collection is untouched.`,
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

		if err := env.store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Deleted session %s", args[0])))
		return nil
	},
}

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce {
			return fmt.Errorf("refusing to delete all sessions without --force")
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.ClearAll(); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✅ All sessions deleted"))
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearForce, "force", false, "Confirm deletion of all sessions")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
}
