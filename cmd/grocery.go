package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evanklingensmith/hungrymarmots/internal/grocery"
	"github.com/evanklingensmith/hungrymarmots/internal/output"
	"github.com/evanklingensmith/hungrymarmots/internal/validate"
)

var groceryCmd = &cobra.Command{
	Use:     "grocery",
	Aliases: []string{"g"},
	Short:   "Manage the shared grocery list",
	GroupID: "planning",
}

var groceryAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an item to the grocery list",
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

		qty, _ := cmd.Flags().GetString("qty")
		notes, _ := cmd.Flags().GetString("notes")
		locationID, _ := cmd.Flags().GetString("location")
		personTag, _ := cmd.Flags().GetString("for")
		dayID, _ := cmd.Flags().GetString("day")

		input := validate.GroceryItem{
			Name:       strings.Join(args, " "),
			Quantity:   qty,
			Notes:      notes,
			LocationID: locationID,
			PersonTag:  personTag,
			MealDayID:  dayID,
		}

		itemID, err := app.Store.AddGroceryItem(cmd.Context(), householdID, input)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		output.Success("Added %s (%s)", strings.TrimSpace(input.Name), itemID)
		return nil
	},
}

var groceryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List grocery items",
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

		items, err := app.Store.ListGroceryItems(cmd.Context(), householdID)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		locationID, _ := cmd.Flags().GetString("location")
		personTag, _ := cmd.Flags().GetString("for")
		status, _ := cmd.Flags().GetString("status")
		filtered := grocery.Sort(grocery.Filter(items, grocery.Filters{
			LocationID: locationID,
			PersonTag:  personTag,
			Status:     status,
		}))

		if len(filtered) == 0 {
			output.Info("No grocery items match.")
			return nil
		}

		locations, err := app.Store.ListLocations(cmd.Context(), householdID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		locationsByID := make(map[string]string, len(locations))
		for _, loc := range locations {
			locationsByID[loc.ID] = loc.Name
		}

		for _, item := range filtered {
			fmt.Printf("%s  %s\n", item.ID, output.FormatGroceryItem(item, locationsByID))
		}
		if tags := grocery.CollectPersonTags(items); len(tags) > 0 {
			output.Info("Tags: %s", strings.Join(tags, ", "))
		}
		return nil
	},
}

func setGroceryCompleted(cmd *cobra.Command, itemID string, completed bool) error {
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

	if err := app.Store.SetGroceryItemCompleted(cmd.Context(), householdID, itemID, completed); err != nil {
		output.Error("%v", err)
		return err
	}
	if completed {
		output.Success("Completed %s", itemID)
	} else {
		output.Success("Reopened %s", itemID)
	}
	return nil
}

var groceryDoneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark an item completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setGroceryCompleted(cmd, args[0], true)
	},
}

var groceryOpenCmd = &cobra.Command{
	Use:   "open [id]",
	Short: "Reopen a completed item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setGroceryCompleted(cmd, args[0], false)
	},
}

var groceryRmCmd = &cobra.Command{
	Use:     "rm [id]",
	Aliases: []string{"remove"},
	Short:   "Delete an item from the list",
	Args:    cobra.ExactArgs(1),
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

		if err := app.Store.DeleteGroceryItem(cmd.Context(), householdID, args[0]); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Deleted %s", args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{groceryAddCmd, groceryListCmd, groceryDoneCmd, groceryOpenCmd, groceryRmCmd} {
		c.Flags().String("household", "", "Household id (defaults to the selected household)")
	}
	groceryAddCmd.Flags().String("qty", "", "Quantity (e.g. \"2 lbs\")")
	groceryAddCmd.Flags().String("notes", "", "Free-form notes")
	groceryAddCmd.Flags().String("location", "", "Location id the item is bought at")
	groceryAddCmd.Flags().String("for", "", "Person tag the item is for")
	groceryAddCmd.Flags().String("day", "", "Meal day the item is needed for (monday-sunday)")
	groceryListCmd.Flags().String("location", "", "Filter by location id")
	groceryListCmd.Flags().String("for", "", "Filter by person tag")
	groceryListCmd.Flags().String("status", grocery.StatusOpen, "Filter by status: open, done, or all")
	groceryCmd.AddCommand(groceryAddCmd, groceryListCmd, groceryDoneCmd, groceryOpenCmd, groceryRmCmd)
	rootCmd.AddCommand(groceryCmd)
}
