package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolbeans/convictions/pkg/address"
	"github.com/coolbeans/convictions/pkg/disposition"
	"github.com/coolbeans/convictions/pkg/geocode"
	"github.com/coolbeans/convictions/pkg/store"
)

func enrichCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Load a court extract and assign IUCR codes",
		Long: `Load a CSV court extract, clean every field, classify each final statute
and write the enriched dispositions as JSON.

With --db the run and its dispositions are saved to the configured database.
With --watch the extract is re-enriched whenever it changes.

Example:
  convictions enrich --input dispositions.csv --output dispositions.json
  convictions enrich --input dispositions.csv --db --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			useDB, _ := cmd.Flags().GetBool("db")
			watch, _ := cmd.Flags().GetBool("watch")

			if input == "" {
				return fmt.Errorf("--input flag is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run := func() error {
				return app.enrich(ctx, cmd, input, output, useDB)
			}
			if err := run(); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			app.logger.Info("Watching input for changes", zap.String("input", input))
			return watchFile(ctx, input, app.logger, run)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Court extract (CSV)")
	cmd.Flags().StringP("output", "o", "", "Enriched dispositions (JSON, default stdout)")
	cmd.Flags().Bool("db", false, "Save the run and dispositions to the configured database")
	cmd.Flags().Bool("watch", false, "Re-enrich whenever the input changes")
	return cmd
}

func (app *app) enrich(ctx context.Context, cmd *cobra.Command, input, output string, useDB bool) error {
	dispositions, err := loadExtract(input, app.logger)
	if err != nil {
		return err
	}

	enricher := disposition.NewEnricher(app.classifier,
		disposition.WithLogger(app.logger),
		disposition.WithWorkers(app.cfg.Enrich.Workers))
	stats, err := enricher.Enrich(ctx, dispositions)
	if err != nil {
		return fmt.Errorf("failed to enrich dispositions: %w", err)
	}
	app.logger.Info("Enriched dispositions",
		zap.String("input", input),
		zap.Int("total", stats.Total),
		zap.Int("assigned", stats.Assigned),
		zap.Int("ambiguous", stats.Ambiguous),
		zap.Int("no_statute", stats.NoStatute),
		zap.Int("format_errors", stats.FormatErrors),
		zap.Int("ilcs_errors", stats.ILCSErrors),
		zap.Int("iucr_errors", stats.IUCRErrors))

	if useDB {
		if err := app.saveRun(ctx, input, dispositions, stats); err != nil {
			return err
		}
	}

	if output == "" && useDB {
		return nil
	}
	return writeJSON(cmd, output, dispositions)
}

func (app *app) saveRun(ctx context.Context, input string, dispositions []*disposition.Disposition, stats disposition.Stats) error {
	db, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.StartRun(ctx, input)
	if err != nil {
		return err
	}
	if err := db.SaveDispositions(ctx, run.ID, dispositions); err != nil {
		return err
	}
	if err := db.FinishRun(ctx, run.ID, stats); err != nil {
		return err
	}
	app.logger.Info("Saved run", zap.String("run_id", run.ID), zap.Int("dispositions", len(dispositions)))
	return nil
}

// loadExtract reads and cleans every row of a CSV extract. Field errors are
// logged and the affected fields left empty.
func loadExtract(path string, logger *zap.Logger) ([]*disposition.Disposition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open extract: %w", err)
	}
	defer file.Close()

	reader, err := disposition.NewReader(file)
	if err != nil {
		return nil, err
	}

	var dispositions []*disposition.Disposition
	for {
		raw, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		d, fieldErrs := disposition.Load(raw)
		for _, fieldErr := range fieldErrs {
			logger.Warn("Unable to parse field",
				zap.String("case_number", fieldErr.CaseNumber),
				zap.String("field", fieldErr.Field),
				zap.String("value", fieldErr.Value),
				zap.Error(fieldErr.Err))
		}
		dispositions = append(dispositions, d)
	}
	return dispositions, nil
}

// loadDispositions reads dispositions from a JSON file, or from a stored
// run when runID is set.
func (app *app) loadDispositions(ctx context.Context, input, runID string) ([]*disposition.Disposition, error) {
	if runID != "" {
		db, err := app.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.ListDispositions(ctx, store.DispositionFilter{RunID: runID})
	}
	if input == "" {
		return nil, fmt.Errorf("--input or --run is required")
	}

	var dispositions []*disposition.Disposition
	if err := readJSON(input, &dispositions); err != nil {
		return nil, err
	}
	return dispositions, nil
}

func convictionsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convictions",
		Short: "Roll enriched dispositions up into convictions",
		Long: `Roll dispositions up into one conviction per charge on each case's first
disposition date.

Example:
  convictions convictions --input dispositions.json --output convictions.json
  convictions convictions --run 3f1c... --anonymize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			runID, _ := cmd.Flags().GetString("run")
			anonymize, _ := cmd.Flags().GetBool("anonymize")
			ctx := cmd.Context()

			dispositions, err := app.loadDispositions(ctx, input, runID)
			if err != nil {
				return err
			}

			convictions := disposition.RollUp(dispositions)
			app.logger.Info("Rolled up convictions",
				zap.Int("dispositions", len(dispositions)),
				zap.Int("convictions", len(convictions)))

			if runID != "" {
				db, err := app.openStore(ctx)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.SaveConvictions(ctx, runID, convictions); err != nil {
					return err
				}
			}

			if anonymize {
				anonymizer := address.NewAnonymizer()
				for _, conviction := range convictions {
					conviction.StAddress = anonymizer.Anonymize(conviction.StAddress)
				}
			}
			return writeJSON(cmd, output, convictions)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Enriched dispositions (JSON)")
	cmd.Flags().StringP("output", "o", "", "Convictions (JSON, default stdout)")
	cmd.Flags().String("run", "", "Read dispositions from a stored run and save the convictions to it")
	cmd.Flags().Bool("anonymize", false, "Round street addresses to the hundred block")
	return cmd
}

func geocodeCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Geocode disposition addresses",
		Long: `Geocode the addresses of dispositions that don't have coordinates yet
with the MapQuest batch geocoder. Requires geocoder.api_key
(CONVICTIONS_GEOCODER_API_KEY).

Example:
  convictions geocode --input dispositions.json --output geocoded.json
  convictions geocode --run 3f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			runID, _ := cmd.Flags().GetString("run")

			if app.cfg.Geocoder.APIKey == "" {
				return fmt.Errorf("geocoder API key not configured (set CONVICTIONS_GEOCODER_API_KEY)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dispositions, err := app.loadDispositions(ctx, input, runID)
			if err != nil {
				return err
			}

			client := geocode.NewClient(app.cfg.GeocodeConfig(), geocode.WithLogger(app.logger))
			geocoded, err := geocode.GeocodeDispositions(ctx, client, dispositions)
			if err != nil {
				return fmt.Errorf("failed to geocode dispositions: %w", err)
			}
			app.logger.Info("Geocoded dispositions",
				zap.Int("dispositions", len(dispositions)),
				zap.Int("geocoded", geocoded))

			if runID != "" {
				db, err := app.openStore(ctx)
				if err != nil {
					return err
				}
				defer db.Close()
				updated, err := db.UpdateCoordinates(ctx, dispositions)
				if err != nil {
					return err
				}
				app.logger.Info("Saved coordinates", zap.Int("updated", updated))
				if output == "" {
					return nil
				}
			}
			return writeJSON(cmd, output, dispositions)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Dispositions (JSON)")
	cmd.Flags().StringP("output", "o", "", "Geocoded dispositions (JSON, default stdout)")
	cmd.Flags().String("run", "", "Geocode a stored run and save the coordinates")
	return cmd
}
