package cmd

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/evanklingensmith/hungrymarmots/internal/output"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
	"github.com/evanklingensmith/hungrymarmots/internal/tui/monitor"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Inspect and resolve write synchronization state",
	GroupID: "sync",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending writes and unresolved conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		state := app.coord.SyncConflictState()

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return output.JSON(state)
		}

		fmt.Print(output.FormatSyncState(state))
		for _, conflict := range state.Conflicts {
			fmt.Println(output.FormatConflict(conflict))
		}
		return nil
	},
}

var syncShowCmd = &cobra.Command{
	Use:   "show [conflict-id or path]",
	Short: "Show conflict detail",
	Long: `Renders each tracked conflict in detail: what your write holds,
what the other writer's version holds, and who wrote it when.
An argument narrows the output to conflicts whose id or path matches.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		state := app.coord.SyncConflictState()
		conflicts := state.Conflicts
		if len(args) == 1 {
			conflicts = matchConflicts(conflicts, args[0])
			if len(conflicts) == 0 {
				output.Error("no conflict matches %q", args[0])
				return fmt.Errorf("no conflict matches %q", args[0])
			}
		}
		if len(conflicts) == 0 {
			output.Info("No conflicts.")
			return nil
		}

		for _, conflict := range conflicts {
			fmt.Println(output.RenderMarkdown(output.ConflictDetailMarkdown(conflict)))
		}
		return nil
	},
}

// matchConflicts narrows conflicts to those whose id starts with, or
// path contains, the query.
func matchConflicts(conflicts []syncer.Conflict, query string) []syncer.Conflict {
	var matched []syncer.Conflict
	for _, conflict := range conflicts {
		if strings.HasPrefix(conflict.ID, query) || strings.Contains(conflict.Path, query) {
			matched = append(matched, conflict)
		}
	}
	return matched
}

var syncResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve all tracked conflicts",
	Long: `Resolves every tracked conflict using one strategy.

"server" accepts the remote state and discards local changes.
"local" retries each local write on top of the observed remote version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer app.Close()

		state := app.coord.SyncConflictState()
		if len(state.Conflicts) == 0 {
			output.Info("No conflicts to resolve.")
			return nil
		}

		strategyFlag, _ := cmd.Flags().GetString("strategy")
		strategy := syncer.Strategy(strategyFlag)
		if strategyFlag == "" {
			strategy, err = pickStrategy(len(state.Conflicts))
			if err != nil {
				return err
			}
		}

		result := app.coord.ResolveSyncConflicts(cmd.Context(), strategy)
		if result.Remaining > 0 {
			output.Warning("Resolved %d, %d still conflicted", result.Resolved, result.Remaining)
			return nil
		}
		output.Success("Resolved %d conflict(s)", result.Resolved)
		return nil
	},
}

// pickStrategy prompts for a resolution strategy when --strategy is absent.
func pickStrategy(conflictCount int) (syncer.Strategy, error) {
	strategy := syncer.StrategyServer
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[syncer.Strategy]().
			Title(fmt.Sprintf("Resolve %d conflict(s) how?", conflictCount)).
			Options(
				huh.NewOption("Keep server version (discard local changes)", syncer.StrategyServer),
				huh.NewOption("Keep my version (retry local writes)", syncer.StrategyLocal),
			).
			Value(&strategy),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("strategy selection cancelled: %w", err)
	}
	return strategy, nil
}

var syncMonitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live TUI of sync state and household activity",
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

		interval, _ := cmd.Flags().GetDuration("interval")
		model := monitor.NewModel(app.Store, householdID, interval)
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
		return nil
	},
}

func init() {
	syncStatusCmd.Flags().Bool("json", false, "Output machine-readable JSON")
	syncResolveCmd.Flags().String("strategy", "", "Resolution strategy: server or local (prompts when omitted)")
	syncMonitorCmd.Flags().String("household", "", "Household id (defaults to the selected household)")
	syncMonitorCmd.Flags().Duration("interval", 2*time.Second, "Refresh interval")
	syncCmd.AddCommand(syncStatusCmd, syncShowCmd, syncResolveCmd, syncMonitorCmd)
	rootCmd.AddCommand(syncCmd)
}
