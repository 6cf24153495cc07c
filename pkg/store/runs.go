package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coolbeans/convictions/pkg/disposition"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one enrichment of an input extract.
type Run struct {
	ID         string            `json:"id"`
	Input      string            `json:"input"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Stats      disposition.Stats `json:"stats"`
}

// StartRun records the start of an enrichment run.
func (store *Store) StartRun(ctx context.Context, input string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Input:     input,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}

	query := store.rebind("INSERT INTO runs (id, input, started_at) VALUES (?, ?, ?)")
	if _, err := store.db.ExecContext(ctx, query, run.ID, run.Input, run.StartedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// FinishRun records the end of a run and its statistics.
func (store *Store) FinishRun(ctx context.Context, id string, stats disposition.Stats) error {
	query := store.rebind(`UPDATE runs SET finished_at = ?, total = ?, assigned = ?, ambiguous = ?,
		no_statute = ?, format_errors = ?, ilcs_errors = ?, iucr_errors = ? WHERE id = ?`)

	result, err := store.db.ExecContext(ctx, query,
		time.Now().UTC().Format(time.RFC3339),
		stats.Total, stats.Assigned, stats.Ambiguous, stats.NoStatute,
		stats.FormatErrors, stats.ILCSErrors, stats.IUCRErrors,
		id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun returns a run by ID.
func (store *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	query := store.rebind(`SELECT id, input, started_at, finished_at, total, assigned, ambiguous,
		no_statute, format_errors, ilcs_errors, iucr_errors FROM runs WHERE id = ?`)

	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	err := store.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Input, &startedAt, &finishedAt,
		&run.Stats.Total, &run.Stats.Assigned, &run.Stats.Ambiguous, &run.Stats.NoStatute,
		&run.Stats.FormatErrors, &run.Stats.ILCSErrors, &run.Stats.IUCRErrors,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("invalid run start time %q: %w", startedAt, err)
	}
	if finishedAt.Valid {
		finished, err := time.Parse(time.RFC3339, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid run finish time %q: %w", finishedAt.String, err)
		}
		run.FinishedAt = &finished
	}
	return &run, nil
}
