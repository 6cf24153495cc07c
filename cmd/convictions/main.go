package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolbeans/convictions/pkg/config"
	"github.com/coolbeans/convictions/pkg/ilcs"
	"github.com/coolbeans/convictions/pkg/iucr"
	"github.com/coolbeans/convictions/pkg/logging"
	"github.com/coolbeans/convictions/pkg/statute"
	"github.com/coolbeans/convictions/pkg/store"
)

var version = "0.1.0"

// app holds the state shared by every command once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger

	classifier *statute.Classifier
	repairs    *statute.RepairTable
	offenses   *iucr.Table
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	app := &app{}

	cmd := &cobra.Command{
		Use:   "convictions",
		Short: "Illinois court disposition ETL",
		Long: `Convictions cleans Cook County court disposition extracts, maps each
charge's statute citation to an IUCR offense code, rolls dispositions up
into convictions and reports on them.

Statutes are cited in either the Illinois Compiled Statutes ("720-5/9-1")
or the superseded Illinois Revised Statutes ("38-9-1"); both resolve to
the same offense codes.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&app.configPath, "config", "", "Configuration file (YAML)")
	cmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(classifyCmd(app))
	cmd.AddCommand(parseCmd(app))
	cmd.AddCommand(stripCmd(app))
	cmd.AddCommand(categoriesCmd(app))
	cmd.AddCommand(enrichCmd(app))
	cmd.AddCommand(convictionsCmd(app))
	cmd.AddCommand(geocodeCmd(app))
	cmd.AddCommand(reportCmd(app))
	cmd.AddCommand(serveCmd(app))
	return cmd
}

// setup loads configuration, builds the logger and loads the lookup
// tables, honoring any data overrides.
func (app *app) setup() error {
	cfg, err := config.Load(app.configPath)
	if err != nil {
		return err
	}
	if app.verbose {
		cfg.Logging = logging.Verbose(cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	app.cfg = cfg

	app.logger, err = logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	return app.loadTables()
}

func (app *app) loadTables() error {
	var err error

	app.repairs = statute.DefaultRepairTable()
	if path := app.cfg.Data.Repairs; path != "" {
		if app.repairs, err = statute.LoadRepairFile(path); err != nil {
			return err
		}
	}

	crosswalk := ilcs.Default()
	if path := app.cfg.Data.Crosswalk; path != "" {
		if crosswalk, err = ilcs.LoadFile(path); err != nil {
			return err
		}
	}

	app.offenses = iucr.Default()
	if path := app.cfg.Data.Offenses; path != "" {
		if app.offenses, err = iucr.LoadFile(path); err != nil {
			return err
		}
	}

	app.classifier = statute.NewClassifier(app.repairs, crosswalk, app.offenses)
	app.logger.Debug("Loaded lookup tables",
		zap.Int("repairs", app.repairs.Len()),
		zap.Int("crosswalk_rows", crosswalk.Len()),
		zap.Int("offense_rows", app.offenses.Len()))
	return nil
}

// openStore opens and migrates the configured database.
func (app *app) openStore(ctx context.Context) (*store.Store, error) {
	db, err := store.Open(app.cfg.Database.Driver, app.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// readJSON decodes a JSON file into v.
func readJSON(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	if err := json.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// writeOutput calls write with the output file, or with stdout when path
// is empty.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// writeJSON writes v as indented JSON.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	return writeOutput(cmd, path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return nil
	})
}
