// Package store persists processed batches (runs) and their result rows.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

const defaultListLimit = 20

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("run not found")

// Store defines the persistence interface for enrichment runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, source model.RunSource, label string, total int) (*model.Run, error)
	FinishRun(ctx context.Context, runID string, processed, failed int) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Results
	SaveResults(ctx context.Context, runID string, rows []model.EnrichedLead) error
	GetResults(ctx context.Context, runID string) ([]model.EnrichedLead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the configured driver and runs migrations. The "none"
// driver returns a nil Store and no error.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		st, err = NewSQLite(dsn)
	case DriverPostgres:
		st, err = NewPostgres(ctx, dsn, nil)
	case DriverNone:
		return nil, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// Counts tallies processed and failed rows of a batch. A row is failed when
// it carries an error message.
func Counts(rows []model.EnrichedLead) (processed, failed int) {
	for _, r := range rows {
		if r.Processed {
			processed++
		}
		if r.Error != "" {
			failed++
		}
	}
	return processed, failed
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
