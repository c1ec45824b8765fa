package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Vishruth-S/Project-Beaver/internal"
	"github.com/spf13/cobra"
)

var healthcheckVerbose bool

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check local storage and backend reachability",
	Long: `Check the health of beaver by verifying:
  • Configuration loading
  • Local state database access
  • Backend liveness (/health, 5 second timeout)

This command is useful for debugging connectivity and storage issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 Beaver Health Check"))
		fmt.Println()

		// Step 1: Configuration
		fmt.Println(infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := internal.LoadConfig(configPath)
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to load configuration:"), err)
			os.Exit(1)
		}
		if apiURL != "" {
			cfg.APIBaseURL = apiURL
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		fmt.Println(successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			fmt.Printf("   Backend:  %s\n", cfg.APIBaseURL)
			fmt.Printf("   Database: %s\n", cfg.DBPath)
			fmt.Printf("   Timeout:  %s\n", cfg.QueryTimeout())
		}
		fmt.Println()

		// Step 2: Local storage
		fmt.Println(infoStyle.Render("Step 2: Checking local storage..."))
		kv, err := internal.OpenKVStore(cfg.DBPath)
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to open local storage:"), err)
			os.Exit(1)
		}
		defer kv.Close()

		store := internal.NewSessionStore(kv)
		sessions, err := store.List()
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to read sessions:"), err)
			os.Exit(1)
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Local storage accessible (%d session(s))", len(sessions))))
		fmt.Println()

		// Step 3: Rate limit state
		fmt.Println(infoStyle.Render("Step 3: Checking rate limit state..."))
		limiter := internal.NewRateLimiter(kv)
		active, remaining, err := limiter.Poll()
		if err != nil {
			fmt.Println(warningStyle.Render("⚠️  Could not read rate limit state:"), err)
		} else if active {
			fmt.Println(warningStyle.Render(fmt.Sprintf("⚠️  Rate limit active, clears in %s", remaining)))
		} else {
			fmt.Println(successStyle.Render("✅ No active rate limit"))
		}
		fmt.Println()

		// Step 4: Backend
		fmt.Println(infoStyle.Render("Step 4: Checking backend..."))
		client := internal.NewClient(cfg.APIBaseURL, cfg.QueryTimeout())
		if err := client.Health(context.Background()); err != nil {
			fmt.Println(errorStyle.Render("❌ Backend unreachable:"), err)
			fmt.Println()
			fmt.Printf("Make sure the backend is running at %s\n", client.BaseURL())
			os.Exit(1)
		}
		fmt.Println(successStyle.Render("✅ Backend healthy"))

		return nil
	},
}

func init() {
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed output")
	rootCmd.AddCommand(healthcheckCmd)
}
