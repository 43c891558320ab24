package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evanklingensmith/hungrymarmots/internal/dates"
	"github.com/evanklingensmith/hungrymarmots/internal/output"
)

var planCmd = &cobra.Command{
	Use:     "plan",
	Short:   "Show and edit the weekly meal plan",
	GroupID: "planning",
}

// resolveWeekID turns a week offset into the Monday-start week id.
func resolveWeekID(offset int) (string, error) {
	weekStart := dates.WeekStartIso(time.Now())
	if offset == 0 {
		return weekStart, nil
	}
	return dates.ShiftWeekIso(weekStart, offset)
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one week's plan",
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

		offset, _ := cmd.Flags().GetInt("week")
		weekID, err := resolveWeekID(offset)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		week, err := app.Store.WeekPlan(cmd.Context(), householdID, weekID)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		members, err := app.Store.ListMembers(cmd.Context(), householdID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		membersByUID := make(map[string]string, len(members))
		for _, m := range members {
			membersByUID[m.UID] = m.DisplayName
		}

		fmt.Print(output.FormatWeekPlan(weekID, week, membersByUID))
		return nil
	},
}

var planSetCmd = &cobra.Command{
	Use:   "set [day] [meal]",
	Short: "Set (or clear) the meal for a day",
	Long: `Sets the planned meal for a day of the selected week.
Pass an empty meal ("") to clear the day.`,
	Args: cobra.RangeArgs(1, 2),
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

		offset, _ := cmd.Flags().GetInt("week")
		weekID, err := resolveWeekID(offset)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		dayID := args[0]
		meal := ""
		if len(args) > 1 {
			meal = args[1]
		}
		cook, _ := cmd.Flags().GetString("cook")

		if err := app.Store.SaveMealForDay(cmd.Context(), householdID, weekID, dayID, meal, cook); err != nil {
			output.Error("%v", err)
			return err
		}

		if meal == "" {
			output.Success("Cleared %s", dayID)
		} else {
			output.Success("%s: %s", dayID, meal)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{planShowCmd, planSetCmd} {
		c.Flags().String("household", "", "Household id (defaults to the selected household)")
		c.Flags().Int("week", 0, "Week offset from the current week (e.g. 1 = next week)")
	}
	planSetCmd.Flags().String("cook", "", "UID of the member cooking")
	planCmd.AddCommand(planShowCmd, planSetCmd)
	rootCmd.AddCommand(planCmd)
}
