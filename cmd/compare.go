package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/azstat/report-cli/internal/compare"
)

var compareOutput string

var compareCmd = &cobra.Command{
	Use:   "compare <current-id> [previous-id]",
	Short: "Diff a stored record against a previous one",
	Long:  "Without a previous ID the latest stored record of the same organization and type with an earlier period is used.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		currentID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid record ID %q", args[0])
		}
		var previousID int64
		if len(args) == 2 {
			previousID, err = strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return eris.Wrapf(err, "invalid record ID %q", args[1])
			}
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		cmp, err := compare.Resolve(cmd.Context(), st, currentID, previousID)
		if err != nil {
			return err
		}

		if compareOutput == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cmp)
		}
		printRecord(cmp.Current)
		printComparison(cmp.Comparison)
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "text", "output format: text or json")
	rootCmd.AddCommand(compareCmd)
}
