package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Manage repository scans",
}

var scanSubmitCmd = &cobra.Command{
	Use:   "submit <repo-url>",
	Short: "Submit a repository for scanning",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		body, err := apiClient().Post("/api/v1/scans", map[string]string{"repo_url": args[0]})
		if err != nil {
			return err
		}

		var j jobView
		if err := json.Unmarshal(body, &j); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		fmt.Printf("Scan submitted: job %s (%s)\n", j.ID, j.Status)
		return nil
	},
}

var scanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scan results",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		path := "/api/v1/scans"
		if repo != "" {
			path += "?repo=" + repo
		}

		body, err := apiClient().Get(path)
		if err != nil {
			return err
		}

		var resp struct {
			Scans []struct {
				ID            string `json:"id"`
				Repo          string `json:"repo"`
				FindingsCount int    `json:"findings_count"`
				CreatedAt     string `json:"created_at"`
			} `json:"scans"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tREPO\tFINDINGS\tCREATED")
		for _, s := range resp.Scans {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Repo, s.FindingsCount, s.CreatedAt)
		}
		return w.Flush()
	},
}

var scanSarifCmd = &cobra.Command{
	Use:   "sarif <scan-id>",
	Short: "Print the SARIF document for a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		body, err := apiClient().Get("/api/v1/scans/" + args[0] + "/sarif")
		if err != nil {
			return err
		}

		fmt.Println(string(body))
		return nil
	},
}

var scanDeleteCmd = &cobra.Command{
	Use:   "delete <scan-id>",
	Short: "Delete a scan and its retained workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := apiClient().Delete("/api/v1/scans/" + args[0]); err != nil {
			return err
		}

		fmt.Printf("Scan %s deleted\n", args[0])
		return nil
	},
}

type jobView struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Target    string `json:"target"`
	Status    string `json:"status"`
	Error     string `json:"error"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

var jobCmd = &cobra.Command{
	Use:   "job <job-id>",
	Short: "Show the status of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		body, err := apiClient().Get("/api/v1/jobs/" + args[0])
		if err != nil {
			return err
		}

		var j jobView
		if err := json.Unmarshal(body, &j); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		fmt.Printf("ID:      %s\n", j.ID)
		fmt.Printf("Kind:    %s\n", j.Kind)
		fmt.Printf("Target:  %s\n", j.Target)
		fmt.Printf("Status:  %s\n", j.Status)
		if j.Error != "" {
			fmt.Printf("Error:   %s\n", j.Error)
		}
		fmt.Printf("Created: %s\n", j.CreatedAt)
		fmt.Printf("Updated: %s\n", j.UpdatedAt)
		return nil
	},
}

func init() {
	scanListCmd.Flags().String("repo", "", "Filter scans by repository (owner/name)")

	scanCmd.AddCommand(scanSubmitCmd)
	scanCmd.AddCommand(scanListCmd)
	scanCmd.AddCommand(scanSarifCmd)
	scanCmd.AddCommand(scanDeleteCmd)
}
