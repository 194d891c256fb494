package cli

import (
	"github.com/spf13/cobra"

	"fxreport/internal/app"
)

var (
	showCSVPath string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display a previously written rates CSV with its statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ShowOptions{
			CSVPath: showCSVPath,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().StringVar(&showCSVPath, "csv", "", "CSV file to read (defaults to output.csv_path)")
}
