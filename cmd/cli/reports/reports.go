package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/fleetyard/fleetyard/cmd/cli/config"
)

func InitReports(rootCmd *cobra.Command) {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "Change-event CSV reports",
	}

	reportsCmd.AddCommand(
		downloadReportCmd(),
		latestReportCmd(),
		runReportCmd(),
	)

	rootCmd.AddCommand(reportsCmd)
}

// downloadReportCmd fetches the on-demand last-24-hours CSV.
func downloadReportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the last-24-hours change report as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := authedRequest("GET", "/v1/reports/on-demand")
			if err != nil {
				return err
			}

			if outPath == "" {
				fmt.Println(string(body))
				return nil
			}
			if err := os.WriteFile(outPath, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Printf("Wrote %d bytes to %s\n", len(body), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the CSV to this file instead of stdout")
	return cmd
}

// latestReportCmd shows the pointer to the most recent scheduled report.
func latestReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the latest scheduled report and its download URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := authedRequest("GET", "/v1/reports/latest")
			if err != nil {
				return err
			}

			var rep struct {
				FileName    string `json:"fileName"`
				URL         string `json:"url"`
				GeneratedAt string `json:"generatedAt"`
			}
			if err := json.Unmarshal(body, &rep); err != nil {
				return err
			}
			fmt.Printf("File:      %s\nGenerated: %s\nURL:       %s\n", rep.FileName, rep.GeneratedAt, rep.URL)
			return nil
		},
	}
}

// runReportCmd triggers the scheduled report pipeline outside its cron slot.
func runReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled report now",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := authedRequest("POST", "/v1/reports/run")
			if err != nil {
				return err
			}
			fmt.Println(string(body))
			return nil
		},
	}
}

func authedRequest(method, path string) ([]byte, error) {
	token, err := config.ReadToken()
	if err != nil {
		return nil, fmt.Errorf("please login first")
	}

	req, err := http.NewRequest(method, config.APIURL()+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
