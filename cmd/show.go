package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored report record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid record ID %q", args[0])
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if rec == nil {
			return eris.Errorf("record %d not found", id)
		}

		if showOutput == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		printRecord(rec)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "text", "output format: text or json")
	rootCmd.AddCommand(showCmd)
}
