package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evanklingensmith/hungrymarmots/internal/output"
)

var locationCmd = &cobra.Command{
	Use:     "location",
	Aliases: []string{"loc"},
	Short:   "Manage grocery store locations",
	GroupID: "planning",
}

var locationAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a store location",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		householdID, err := app.householdID(cmd.Flags())
		if err != nil {
			output.Error("%v", err)
			return err
		}

		name := strings.Join(args, " ")
		if err := app.Store.AddLocation(cmd.Context(), householdID, name); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Added location %s", strings.TrimSpace(name))
		return nil
	},
}

var locationListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List store locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		householdID, err := app.householdID(cmd.Flags())
		if err != nil {
			output.Error("%v", err)
			return err
		}

		locations, err := app.Store.ListLocations(cmd.Context(), householdID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if len(locations) == 0 {
			output.Info("No locations yet. Add one with 'marmots location add'.")
			return nil
		}
		for _, loc := range locations {
			fmt.Printf("%s  %s\n", loc.ID, loc.Name)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{locationAddCmd, locationListCmd} {
		c.Flags().String("household", "", "Household id (defaults to the selected household)")
	}
	locationCmd.AddCommand(locationAddCmd, locationListCmd)
	rootCmd.AddCommand(locationCmd)
}
