package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/azstat/report-cli/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a stored record to an XLSX workbook",
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

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("report-%d.xlsx", id)
		}
		if err := export.WriteXLSX(rec, out); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default report-<id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
