package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/coolbeans/convictions/pkg/disposition"
	"github.com/coolbeans/convictions/pkg/iucr"
	"github.com/coolbeans/convictions/pkg/report"
)

func reportCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write CSV reports",
		Long: `Write CSV reports over enriched dispositions or convictions.

Example:
  convictions report statutes --input convictions.json --top 25
  convictions report categories --input convictions.json --output categories.csv
  convictions report attempted --input dispositions.json`,
	}

	cmd.PersistentFlags().StringP("output", "o", "", "Report file (CSV, default stdout)")

	statutes := &cobra.Command{
		Use:   "statutes",
		Short: "Most common conviction statutes",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			runID, _ := cmd.Flags().GetString("run")
			top, _ := cmd.Flags().GetInt("top")

			convictions, err := app.loadConvictions(cmd.Context(), input, runID)
			if err != nil {
				return err
			}
			return writeReport(cmd, report.MostCommonStatutes(convictions, top))
		},
	}
	statutes.Flags().StringP("input", "i", "", "Convictions (JSON)")
	statutes.Flags().String("run", "", "Read convictions from a stored run")
	statutes.Flags().Int("top", 10, "Number of statutes (0 for all)")

	categories := &cobra.Command{
		Use:   "categories",
		Short: "Convictions per category group",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			runID, _ := cmd.Flags().GetString("run")

			convictions, err := app.loadConvictions(cmd.Context(), input, runID)
			if err != nil {
				return err
			}
			return writeReport(cmd, report.CountCategories(iucr.DefaultRegistry(), convictions))
		},
	}
	categories.Flags().StringP("input", "i", "", "Convictions (JSON)")
	categories.Flags().String("run", "", "Read convictions from a stored run")

	attempted := &cobra.Command{
		Use:   "attempted",
		Short: "Distinct statutes charged as attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			runID, _ := cmd.Flags().GetString("run")

			dispositions, err := app.loadDispositions(cmd.Context(), input, runID)
			if err != nil {
				return err
			}
			return writeReport(cmd, report.AttemptedStatutes(dispositions))
		},
	}
	attempted.Flags().StringP("input", "i", "", "Dispositions (JSON)")
	attempted.Flags().String("run", "", "Read dispositions from a stored run")

	cmd.AddCommand(statutes, categories, attempted)
	return cmd
}

// loadConvictions reads convictions from a JSON file, or from a stored run
// when runID is set.
func (app *app) loadConvictions(ctx context.Context, input, runID string) ([]*disposition.Conviction, error) {
	if runID != "" {
		db, err := app.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.ListConvictions(ctx, runID)
	}
	if input == "" {
		return nil, fmt.Errorf("--input or --run is required")
	}

	var convictions []*disposition.Conviction
	if err := readJSON(input, &convictions); err != nil {
		return nil, err
	}
	return convictions, nil
}

func writeReport(cmd *cobra.Command, r report.Report) error {
	output, _ := cmd.Flags().GetString("output")
	return writeOutput(cmd, output, func(w io.Writer) error {
		return report.WriteCSV(w, r)
	})
}
