package vehicles

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fleetyard/fleetyard/cmd/cli/config"
	"github.com/fleetyard/fleetyard/cmd/cli/output"
	"github.com/fleetyard/fleetyard/internal/models"
)

func InitVehicles(rootCmd *cobra.Command) {
	vehiclesCmd := &cobra.Command{
		Use:   "vehicles",
		Short: "Manage vehicle records",
	}

	vehiclesCmd.AddCommand(
		listVehiclesCmd(),
		getVehicleCmd(),
		listEventsCmd(),
	)

	rootCmd.AddCommand(vehiclesCmd)
}

func listVehiclesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vehicles, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			var list []models.Vehicle
			if err := getJSON(fmt.Sprintf("/v1/vehicles?limit=%d", limit), &list); err != nil {
				fmt.Println(err)
				return
			}

			rows := make([][]interface{}, 0, len(list))
			for _, v := range list {
				rows = append(rows, []interface{}{
					v.VIN, v.Maker, v.Model, v.Location, v.NumberPlate, v.Availability,
				})
			}
			output.RenderTable([]string{"VIN", "Maker", "Model", "Location", "Plate", "Availability"}, rows)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of vehicles to list")
	return cmd
}

func getVehicleCmd() *cobra.Command {
	var vin string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one vehicle record",
		Run: func(cmd *cobra.Command, args []string) {
			if vin == "" {
				fmt.Println("--vin is required")
				return
			}
			var out any
			if err := getJSON("/v1/vehicles/"+vin, &out); err != nil {
				fmt.Println(err)
				return
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().StringVar(&vin, "vin", "", "vehicle identification number")
	return cmd
}

func listEventsCmd() *cobra.Command {
	var vin string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the change history of a vehicle",
		Run: func(cmd *cobra.Command, args []string) {
			if vin == "" {
				fmt.Println("--vin is required")
				return
			}
			var events []models.ChangeEvent
			if err := getJSON("/v1/vehicles/"+vin+"/events", &events); err != nil {
				fmt.Println(err)
				return
			}

			deref := func(p *string) string {
				if p == nil {
					return ""
				}
				return *p
			}

			var rows [][]interface{}
			for _, ev := range events {
				for _, c := range ev.Changes {
					rows = append(rows, []interface{}{
						ev.UpdatedAt.Format("2006-01-02 15:04"), ev.UpdatedBy,
						c.Field, deref(c.OldValue), deref(c.NewValue),
					})
				}
			}
			output.RenderTable([]string{"When", "By", "Field", "Old", "New"}, rows)
		},
	}

	cmd.Flags().StringVar(&vin, "vin", "", "vehicle identification number")
	return cmd
}

// getJSON performs an authenticated GET against the API and decodes the body.
func getJSON(path string, out any) error {
	token, err := config.ReadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	req, err := http.NewRequest("GET", config.APIURL()+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
