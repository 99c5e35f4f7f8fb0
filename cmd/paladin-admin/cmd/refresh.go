package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the vulnerability report database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		days, _ := cmd.Flags().GetInt("days")

		body, err := apiClient().Post("/api/v1/refresh", map[string]int{"days": days})
		if err != nil {
			return err
		}

		var j jobView
		if err := json.Unmarshal(body, &j); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		fmt.Printf("Refresh submitted: job %s (%s)\n", j.ID, j.Status)
		return nil
	},
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List vulnerability reports grouped by repository and package",
	RunE: func(_ *cobra.Command, _ []string) error {
		body, err := apiClient().Get("/api/v1/reports")
		if err != nil {
			return err
		}

		var resp struct {
			Reports []struct {
				Repo     string `json:"repo"`
				Package  string `json:"pkg"`
				Findings []struct {
					Ghsa     string   `json:"ghsa"`
					Cve      string   `json:"cve"`
					Severity string   `json:"severity"`
					Score    *float64 `json:"cvss_score"`
				} `json:"findings"`
			} `json:"reports"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REPO\tPACKAGE\tGHSA\tCVE\tSEVERITY\tCVSS")
		for _, g := range resp.Reports {
			for _, f := range g.Findings {
				score := "-"
				if f.Score != nil {
					score = fmt.Sprintf("%.1f", *f.Score)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", g.Repo, g.Package, f.Ghsa, f.Cve, f.Severity, score)
			}
		}
		return w.Flush()
	},
}

func init() {
	refreshCmd.Flags().Int("days", 0, "Lookback window in days (server default when omitted)")
}
