package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fxreport/internal/app"
	"fxreport/internal/service"
)

var (
	runDays    int
	runCSVPath string
	runPDFPath string
)

var runCmd = &cobra.Command{
	Use:   "run <days>",
	Short: "Fetch the last N days of rates and write data.csv and table.pdf",
	// Args runs before PersistentPreRunE, so bad input never waits on config loading.
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return service.ErrInvalidInput
		}
		days, err := parseDays(args[0])
		if err != nil {
			return err
		}
		runDays = days
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Run(cmd.Context(), app.RunOptions{
			Days:    runDays,
			CSVPath: runCSVPath,
			PDFPath: runPDFPath,
		})
	},
}

func parseDays(arg string) (int, error) {
	days, err := strconv.Atoi(arg)
	if err != nil || days <= 0 {
		return 0, service.ErrInvalidInput
	}
	return days, nil
}

// negative day counts such as "-3" reach pflag as unknown shorthand flags
func runFlagError(cmd *cobra.Command, err error) error {
	var notExist *pflag.NotExistError
	if errors.As(err, &notExist) && startsWithDigit(notExist.GetSpecifiedShortnames()) {
		return service.ErrInvalidInput
	}
	return err
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func init() {
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "Override output.csv_path")
	runCmd.Flags().StringVar(&runPDFPath, "pdf", "", "Override output.pdf_path")
	runCmd.SetFlagErrorFunc(runFlagError)
}
