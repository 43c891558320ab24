package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evanklingensmith/hungrymarmots/internal/data"
	"github.com/evanklingensmith/hungrymarmots/internal/output"
)

var activityCmd = &cobra.Command{
	Use:     "activity",
	Short:   "Show the household activity feed",
	GroupID: "household",
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

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := app.Store.ListActivity(cmd.Context(), householdID, limit)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if len(entries) == 0 {
			output.Info("No activity yet.")
			return nil
		}
		for _, entry := range entries {
			fmt.Println(output.FormatActivity(entry))
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().String("household", "", "Household id (defaults to the selected household)")
	activityCmd.Flags().Int("limit", data.DefaultActivityLimit, "Maximum entries to show")
	rootCmd.AddCommand(activityCmd)
}
