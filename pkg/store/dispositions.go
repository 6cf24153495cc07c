package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/coolbeans/convictions/pkg/disposition"
)

type column struct {
	name       string
	definition string
}

var dispositionColumns = []column{
	{"case_number", "TEXT NOT NULL"},
	{"sequence_number", "TEXT NOT NULL DEFAULT ''"},
	{"ctlbkngno", "TEXT NOT NULL DEFAULT ''"},
	{"fgrprntno", "TEXT NOT NULL DEFAULT ''"},
	{"statepoliceid", "TEXT NOT NULL DEFAULT ''"},
	{"fbiidno", "TEXT NOT NULL DEFAULT ''"},
	{"dob", "TEXT"},
	{"st_address", "TEXT NOT NULL DEFAULT ''"},
	{"raw_city_state", "TEXT NOT NULL DEFAULT ''"},
	{"city", "TEXT NOT NULL DEFAULT ''"},
	{"state", "TEXT NOT NULL DEFAULT ''"},
	{"zipcode", "TEXT NOT NULL DEFAULT ''"},
	{"arrest_date", "TEXT"},
	{"initial_date", "TEXT"},
	{"chrgdispdate", "TEXT"},
	{"sex", "TEXT NOT NULL DEFAULT ''"},
	{"statute", "TEXT NOT NULL DEFAULT ''"},
	{"chrgdesc", "TEXT NOT NULL DEFAULT ''"},
	{"chrgtype", "TEXT NOT NULL DEFAULT ''"},
	{"chrgtype2", "TEXT NOT NULL DEFAULT ''"},
	{"chrgclass", "TEXT NOT NULL DEFAULT ''"},
	{"chrgdisp", "TEXT NOT NULL DEFAULT ''"},
	{"ammndchargstatute", "TEXT NOT NULL DEFAULT ''"},
	{"ammndchrgdescr", "TEXT NOT NULL DEFAULT ''"},
	{"ammndchrgtype", "TEXT NOT NULL DEFAULT ''"},
	{"ammndchrgclass", "TEXT NOT NULL DEFAULT ''"},
	{"minsent_years", "INTEGER NOT NULL DEFAULT 0"},
	{"minsent_months", "INTEGER NOT NULL DEFAULT 0"},
	{"minsent_days", "INTEGER NOT NULL DEFAULT 0"},
	{"minsent_life", "INTEGER NOT NULL DEFAULT 0"},
	{"minsent_death", "INTEGER NOT NULL DEFAULT 0"},
	{"maxsent_years", "INTEGER NOT NULL DEFAULT 0"},
	{"maxsent_months", "INTEGER NOT NULL DEFAULT 0"},
	{"maxsent_days", "INTEGER NOT NULL DEFAULT 0"},
	{"maxsent_life", "INTEGER NOT NULL DEFAULT 0"},
	{"maxsent_death", "INTEGER NOT NULL DEFAULT 0"},
	{"amtoffine", "INTEGER"},
	{"final_statute", "TEXT NOT NULL DEFAULT ''"},
	{"final_chrgdesc", "TEXT NOT NULL DEFAULT ''"},
	{"final_chrgtype", "TEXT NOT NULL DEFAULT ''"},
	{"final_chrgclass", "TEXT NOT NULL DEFAULT ''"},
	{"iucr_code", "TEXT NOT NULL DEFAULT ''"},
	{"iucr_category", "TEXT NOT NULL DEFAULT ''"},
	{"inchoate", "TEXT NOT NULL DEFAULT ''"},
	{"lat", "DOUBLE PRECISION"},
	{"lon", "DOUBLE PRECISION"},
}

var (
	dispositionColumnDefinitions = columnDefinitions(dispositionColumns)
	dispositionColumnNames       = columnNames(dispositionColumns)
)

func columnDefinitions(columns []column) []string {
	definitions := make([]string, len(columns))
	for i, c := range columns {
		definitions[i] = c.name + " " + c.definition
	}
	return definitions
}

func columnNames(columns []column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// dispositionValues returns d's values in dispositionColumns order.
func dispositionValues(d *disposition.Disposition) []any {
	return []any{
		d.CaseNumber, d.SequenceNumber, d.Ctlbkngno, d.Fgrprntno, d.StatePoliceID, d.FBIIDNo,
		dateValue(d.DOB),
		d.StAddress, d.RawCityState, d.City, d.State, d.Zipcode,
		dateValue(d.ArrestDate), dateValue(d.InitialDate), dateValue(d.ChrgDispDate),
		d.Sex,
		d.Statute, d.ChrgDesc, d.ChrgType, d.ChrgType2, d.ChrgClass, d.ChrgDisp,
		d.AmmndChargStatute, d.AmmndChrgDescr, d.AmmndChrgType, d.AmmndChrgClass,
		d.MinSent.Years, d.MinSent.Months, d.MinSent.Days, boolValue(d.MinSent.Life), boolValue(d.MinSent.Death),
		d.MaxSent.Years, d.MaxSent.Months, d.MaxSent.Days, boolValue(d.MaxSent.Life), boolValue(d.MaxSent.Death),
		intValue(d.AmtOfFine),
		d.FinalStatute, d.FinalChrgDesc, d.FinalChrgType, d.FinalChrgClass,
		d.IUCRCode, d.IUCRCategory, d.Inchoate,
		floatValue(d.Lat), floatValue(d.Lon),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDisposition(row rowScanner) (*disposition.Disposition, error) {
	var (
		d                                           disposition.Disposition
		dob, arrestDate, initialDate, chrgDispDate sql.NullString
		amtOfFine                                   sql.NullInt64
		lat, lon                                    sql.NullFloat64
	)
	err := row.Scan(
		&d.ID,
		&d.CaseNumber, &d.SequenceNumber, &d.Ctlbkngno, &d.Fgrprntno, &d.StatePoliceID, &d.FBIIDNo,
		&dob,
		&d.StAddress, &d.RawCityState, &d.City, &d.State, &d.Zipcode,
		&arrestDate, &initialDate, &chrgDispDate,
		&d.Sex,
		&d.Statute, &d.ChrgDesc, &d.ChrgType, &d.ChrgType2, &d.ChrgClass, &d.ChrgDisp,
		&d.AmmndChargStatute, &d.AmmndChrgDescr, &d.AmmndChrgType, &d.AmmndChrgClass,
		&d.MinSent.Years, &d.MinSent.Months, &d.MinSent.Days, &d.MinSent.Life, &d.MinSent.Death,
		&d.MaxSent.Years, &d.MaxSent.Months, &d.MaxSent.Days, &d.MaxSent.Life, &d.MaxSent.Death,
		&amtOfFine,
		&d.FinalStatute, &d.FinalChrgDesc, &d.FinalChrgType, &d.FinalChrgClass,
		&d.IUCRCode, &d.IUCRCategory, &d.Inchoate,
		&lat, &lon,
	)
	if err != nil {
		return nil, err
	}

	for _, field := range []struct {
		value sql.NullString
		into  **time.Time
	}{
		{dob, &d.DOB},
		{arrestDate, &d.ArrestDate},
		{initialDate, &d.InitialDate},
		{chrgDispDate, &d.ChrgDispDate},
	} {
		if *field.into, err = parseDate(field.value); err != nil {
			return nil, err
		}
	}
	d.AmtOfFine = nullInt(amtOfFine)
	d.Lat = nullFloat(lat)
	d.Lon = nullFloat(lon)
	return &d, nil
}

// SaveDispositions inserts dispositions under runID in one transaction and
// sets their IDs.
func (store *Store) SaveDispositions(ctx context.Context, runID string, dispositions []*disposition.Disposition) error {
	query := store.rebind(fmt.Sprintf("INSERT INTO dispositions (run_id, %s) VALUES (?, %s) RETURNING id",
		strings.Join(dispositionColumnNames, ", "), placeholders(len(dispositionColumnNames))))

	return store.inTx(ctx, func(tx *sql.Tx) error {
		statement, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer statement.Close()

		for _, d := range dispositions {
			args := append([]any{runID}, dispositionValues(d)...)
			if err := statement.QueryRowContext(ctx, args...).Scan(&d.ID); err != nil {
				return fmt.Errorf("failed to insert disposition for case %q: %w", d.CaseNumber, err)
			}
		}
		return nil
	})
}

// DispositionFilter narrows ListDispositions.
type DispositionFilter struct {
	RunID      string
	CaseNumber string
	IUCRCode   string
	Ungeocoded bool
}

// ListDispositions returns stored dispositions ordered by ID.
func (store *Store) ListDispositions(ctx context.Context, filter DispositionFilter) ([]*disposition.Disposition, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.CaseNumber != "" {
		conditions = append(conditions, "case_number = ?")
		args = append(args, filter.CaseNumber)
	}
	if filter.IUCRCode != "" {
		conditions = append(conditions, "iucr_code = ?")
		args = append(args, filter.IUCRCode)
	}
	if filter.Ungeocoded {
		conditions = append(conditions, "lat IS NULL AND lon IS NULL")
	}

	query := "SELECT id, " + strings.Join(dispositionColumnNames, ", ") + " FROM dispositions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := store.db.QueryContext(ctx, store.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispositions: %w", err)
	}
	defer rows.Close()

	var dispositions []*disposition.Disposition
	for rows.Next() {
		d, err := scanDisposition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disposition: %w", err)
		}
		dispositions = append(dispositions, d)
	}
	return dispositions, rows.Err()
}

// UpdateCoordinates stores the latitude and longitude of geocoded
// dispositions. Dispositions without an ID or coordinates are skipped.
func (store *Store) UpdateCoordinates(ctx context.Context, dispositions []*disposition.Disposition) (int, error) {
	query := store.rebind("UPDATE dispositions SET lat = ?, lon = ? WHERE id = ?")

	updated := 0
	err := store.inTx(ctx, func(tx *sql.Tx) error {
		for _, d := range dispositions {
			if d.ID == 0 || !d.Geocoded() {
				continue
			}
			if _, err := tx.ExecContext(ctx, query, *d.Lat, *d.Lon, d.ID); err != nil {
				return fmt.Errorf("failed to update coordinates for disposition %d: %w", d.ID, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (store *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
