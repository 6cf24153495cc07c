package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/coolbeans/convictions/pkg/disposition"
)

var convictionColumnNames = []string{
	"case_number", "ctlbkngno", "fgrprntno", "statepoliceid", "fbiidno", "dob",
	"st_address", "city", "state", "zipcode", "sex", "chrgdispdate",
	"final_statute", "final_chrgdesc", "final_chrgtype", "final_chrgclass",
	"iucr_code", "iucr_category", "inchoate", "lat", "lon",
}

// SaveConvictions inserts convictions under runID, sets their IDs and links
// each rolled-up disposition that has an ID to its conviction.
func (store *Store) SaveConvictions(ctx context.Context, runID string, convictions []*disposition.Conviction) error {
	insert := store.rebind(fmt.Sprintf("INSERT INTO convictions (run_id, %s) VALUES (?, %s) RETURNING id",
		strings.Join(convictionColumnNames, ", "), placeholders(len(convictionColumnNames))))
	link := store.rebind("UPDATE dispositions SET conviction_id = ? WHERE id = ?")

	return store.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range convictions {
			args := []any{
				runID,
				c.CaseNumber, c.Ctlbkngno, c.Fgrprntno, c.StatePoliceID, c.FBIIDNo, dateValue(c.DOB),
				c.StAddress, c.City, c.State, c.Zipcode, c.Sex, dateValue(c.ChrgDispDate),
				c.FinalStatute, c.FinalChrgDesc, c.FinalChrgType, c.FinalChrgClass,
				c.IUCRCode, c.IUCRCategory, c.Inchoate, floatValue(c.Lat), floatValue(c.Lon),
			}
			if err := tx.QueryRowContext(ctx, insert, args...).Scan(&c.ID); err != nil {
				return fmt.Errorf("failed to insert conviction for case %q: %w", c.CaseNumber, err)
			}

			for _, d := range c.Dispositions {
				if d.ID == 0 {
					continue
				}
				if _, err := tx.ExecContext(ctx, link, c.ID, d.ID); err != nil {
					return fmt.Errorf("failed to link disposition %d: %w", d.ID, err)
				}
			}
		}
		return nil
	})
}

// ListConvictions returns the convictions of a run ordered by ID. An empty
// runID lists every conviction.
func (store *Store) ListConvictions(ctx context.Context, runID string) ([]*disposition.Conviction, error) {
	query := "SELECT id, " + strings.Join(convictionColumnNames, ", ") + " FROM convictions"
	var args []any
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query += " ORDER BY id"

	rows, err := store.db.QueryContext(ctx, store.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list convictions: %w", err)
	}
	defer rows.Close()

	var convictions []*disposition.Conviction
	for rows.Next() {
		var (
			c                 disposition.Conviction
			dob, chrgDispDate sql.NullString
			lat, lon          sql.NullFloat64
		)
		err := rows.Scan(
			&c.ID,
			&c.CaseNumber, &c.Ctlbkngno, &c.Fgrprntno, &c.StatePoliceID, &c.FBIIDNo, &dob,
			&c.StAddress, &c.City, &c.State, &c.Zipcode, &c.Sex, &chrgDispDate,
			&c.FinalStatute, &c.FinalChrgDesc, &c.FinalChrgType, &c.FinalChrgClass,
			&c.IUCRCode, &c.IUCRCategory, &c.Inchoate, &lat, &lon,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conviction: %w", err)
		}
		if c.DOB, err = parseDate(dob); err != nil {
			return nil, err
		}
		if c.ChrgDispDate, err = parseDate(chrgDispDate); err != nil {
			return nil, err
		}
		c.Lat = nullFloat(lat)
		c.Lon = nullFloat(lon)
		convictions = append(convictions, &c)
	}
	return convictions, rows.Err()
}
