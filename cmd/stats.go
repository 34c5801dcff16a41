package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [org-code]",
	Short: "Summarize stored records by validation status",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		orgCode := ""
		if len(args) == 1 {
			orgCode = args[0]
		}

		stats, err := st.Stats(cmd.Context(), orgCode)
		if err != nil {
			return err
		}

		if orgCode != "" {
			fmt.Printf("Organization: %s\n", orgCode)
		}
		fmt.Printf("Total:    %d\n", stats.Total)
		fmt.Printf("Passed:   %d\n", stats.Passed)
		fmt.Printf("Warnings: %d\n", stats.Warnings)
		fmt.Printf("Failed:   %d\n", stats.Failed)
		if stats.LastRecord != nil {
			fmt.Printf("Last:     record %d (%s, %s)\n",
				stats.LastRecord.ID, stats.LastRecord.Report.Period, stats.LastRecord.Result.Status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
