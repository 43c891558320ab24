package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/evanklingensmith/hungrymarmots/internal/localstate"
	"github.com/evanklingensmith/hungrymarmots/internal/output"
	"github.com/evanklingensmith/hungrymarmots/internal/syncconfig"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Set up the local state and your member profile",
	Long:    `Creates the local .marmots directory, the state database, and your member profile.`,
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := syncconfig.Load(getBaseDir())
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")

		if name == "" {
			// Prompt interactively when flags are not given.
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Your name").
					Validate(requiredField("name")).
					Value(&name),
				huh.NewInput().
					Title("Email (optional)").
					Value(&email),
			))
			if err := form.Run(); err != nil {
				return err
			}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			output.Error("name is required")
			return errors.New("name is required")
		}

		state, err := localstate.Initialize(getBaseDir())
		if err != nil {
			output.Error("failed to initialize state database: %v", err)
			return err
		}
		defer state.Close()

		if cfg.Profile.UID == "" {
			cfg.Profile.UID = "u_" + uuid.NewString()
		}
		cfg.Profile.DisplayName = name
		cfg.Profile.Email = strings.TrimSpace(email)

		if err := syncconfig.Save(getBaseDir(), cfg); err != nil {
			output.Error("failed to save config: %v", err)
			return err
		}

		fmt.Println("INITIALIZED .marmots/")
		output.Success("Profile: %s (%s)", cfg.Profile.DisplayName, cfg.Profile.UID)
		return nil
	},
}

func requiredField(label string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func init() {
	initCmd.Flags().String("name", "", "Display name for your profile")
	initCmd.Flags().String("email", "", "Email for your profile")
	rootCmd.AddCommand(initCmd)
}
