package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evanklingensmith/hungrymarmots/internal/output"
	"github.com/evanklingensmith/hungrymarmots/internal/syncconfig"
)

var householdCmd = &cobra.Command{
	Use:     "household",
	Aliases: []string{"hh"},
	Short:   "Create, join, and inspect households",
	GroupID: "household",
}

var householdCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a household and become its owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		id, err := app.Store.CreateHousehold(cmd.Context(), args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		household, err := app.Store.GetHousehold(cmd.Context(), id)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		// Select the new household for subsequent commands.
		app.Config.Household = id
		if err := syncconfig.Save(getBaseDir(), app.Config); err != nil {
			output.Warning("created, but could not select household: %v", err)
		}

		output.Success("Created household %q", household.Name)
		fmt.Printf("ID: %s\n", id)
		fmt.Printf("Invite code: %s\n", household.InviteCode)
		return nil
	},
}

var householdJoinCmd = &cobra.Command{
	Use:   "join [household-id] [invite-code]",
	Short: "Join a household with its invite code",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		if err := app.Store.JoinHousehold(cmd.Context(), args[0], args[1]); err != nil {
			output.Error("%v", err)
			return err
		}

		app.Config.Household = args[0]
		if err := syncconfig.Save(getBaseDir(), app.Config); err != nil {
			output.Warning("joined, but could not select household: %v", err)
		}

		output.Success("Joined household %s", args[0])
		return nil
	},
}

var householdListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List households you belong to",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		households, err := app.Store.ListHouseholds(cmd.Context())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if len(households) == 0 {
			output.Info("No households yet. Create one with 'marmots household create'.")
			return nil
		}
		for _, h := range households {
			marker := "  "
			if h.ID == app.Config.Household {
				marker = "* "
			}
			fmt.Println(marker + output.FormatHousehold(h))
		}
		return nil
	},
}

var householdUseCmd = &cobra.Command{
	Use:   "use [household-id]",
	Short: "Select the household subsequent commands act on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		household, err := app.Store.GetHousehold(cmd.Context(), args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		app.Config.Household = household.ID
		if err := syncconfig.Save(getBaseDir(), app.Config); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Using household %q", household.Name)
		return nil
	},
}

var householdMembersCmd = &cobra.Command{
	Use:   "members",
	Short: "List members of the selected household",
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

		members, err := app.Store.ListMembers(cmd.Context(), householdID)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		for _, m := range members {
			fmt.Println(output.FormatMember(m))
		}
		return nil
	},
}

func init() {
	householdMembersCmd.Flags().String("household", "", "Household id (defaults to the selected household)")
	householdCmd.AddCommand(householdCreateCmd, householdJoinCmd, householdListCmd, householdUseCmd, householdMembersCmd)
	rootCmd.AddCommand(householdCmd)
}
