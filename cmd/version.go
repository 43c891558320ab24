package cmd

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show the marmots version",
	GroupID: "system",
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			cmd.Print(version)
			return
		}
		cmd.Printf("marmots version %s\n", version)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version string")
	rootCmd.AddCommand(versionCmd)
}
