package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daylog/internal/importer"
)

var importMonth string

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import the days of a month from a spreadsheet",
	Long: `Import reads the first sheet of a spreadsheet exported by daylog (or
edited by hand) and writes every row dated in the chosen month in one
batch. Rows of other months are skipped. File-project assignments are not
part of the spreadsheet and are rebuilt from the project order on edit.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importMonth, "month", "", "Month to import (YYYY-MM, default current)")
}

func runImport(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	m := monthFlag(importMonth)

	res, err := importer.ParseFile(args[0], m)
	if err != nil {
		fail(err)
	}
	if len(res.Logs) == 0 {
		fmt.Printf("Nothing to import for %s (%d rows skipped).\n", m.MonthName(), res.Skipped)
		return nil
	}
	n, err := e.logs.Import(cmd.Context(), uid, res.Logs)
	check(err)
	fmt.Printf("Imported %d days into %s", n, m.MonthName())
	if res.Skipped > 0 {
		fmt.Printf(" (%d rows skipped)", res.Skipped)
	}
	fmt.Println(".")
	return nil
}
