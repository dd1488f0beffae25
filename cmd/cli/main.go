package main

import (
	"fmt"
	"os"

	"github.com/fleetyard/fleetyard/cmd/cli/auth"
	"github.com/fleetyard/fleetyard/cmd/cli/reports"
	"github.com/fleetyard/fleetyard/cmd/cli/root"
	"github.com/fleetyard/fleetyard/cmd/cli/vehicles"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	vehicles.InitVehicles(rootCmd)
	reports.InitReports(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
