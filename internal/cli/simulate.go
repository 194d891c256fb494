package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"fxreport/internal/app"
)

var (
	simulateDays    int
	simulateCSVPath string
	simulatePDFPath string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "用合成汇率生成一份报告，不访问网络",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateDays <= 0 {
			return errors.New("--days 必须大于 0")
		}

		return getApp().Simulate(cmd.Context(), app.SimulateOptions{
			Days:    simulateDays,
			CSVPath: simulateCSVPath,
			PDFPath: simulatePDFPath,
		})
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateDays, "days", 10, "Number of synthetic days")
	simulateCmd.Flags().StringVar(&simulateCSVPath, "csv", "", "Override output.csv_path")
	simulateCmd.Flags().StringVar(&simulatePDFPath, "pdf", "", "Override output.pdf_path")
}
