package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azstat/report-cli/internal/model"
	"github.com/azstat/report-cli/internal/store"
)

var (
	historyOrg    string
	historyType   string
	historyStatus string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored report records",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.History(cmd.Context(), store.Filter{
			OrgCode:    historyOrg,
			ReportType: model.ReportType(historyType),
			Status:     model.ValidationStatus(historyStatus),
			Limit:      historyLimit,
		})
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("no records")
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
	historyCmd.Flags().StringVar(&historyOrg, "org", "", "filter by organization code")
	historyCmd.Flags().StringVar(&historyType, "type", "", "filter by report type (1-isth or 12-isth)")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "filter by validation status")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "max records to list")
	rootCmd.AddCommand(historyCmd)
}
