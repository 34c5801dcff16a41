package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search records by organization code or name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.Search(cmd.Context(), args[0], searchLimit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("no matches")
			return nil
		}
		fmt.Printf("%6s  %-10s  %-8s  %-7s  %-8s  %s\n", "ID", "ORG", "TYPE", "PERIOD", "STATUS", "STORED")
		for _, rec := range records {
			printRecordLine(rec)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "max records to list")
	rootCmd.AddCommand(searchCmd)
}
