package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version string

	// Global flags
	flagAPIURL  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "paladin-admin",
	Short: "Paladin administration CLI",
	Long: `paladin-admin manages a Paladin server.

It submits repository scans and advisory refreshes, inspects jobs and
vulnerability reports, and seeds the CWE catalog.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("paladin-admin %s %s/%s\n", version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Override API URL (env: PALADIN_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(seedCweCmd)
}

func initConfig() {
	if flagAPIURL == "" {
		flagAPIURL = os.Getenv("PALADIN_API_URL")
	}
	if flagAPIURL == "" {
		flagAPIURL = "http://localhost:9001"
	}
}

func apiClient() *Client {
	return NewClient(flagAPIURL, flagVerbose)
}
