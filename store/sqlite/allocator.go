/*
allocator.go - Year-scoped report identifier allocation

PURPOSE:
  Produces the next unique SLP-YYYY-XXXX identifier for a year, race-free
  under concurrent callers. The counter row is upserted and incremented in
  a single atomic statement, then the resulting value is read back inside
  the same transaction. This closes the classic check-then-act race where
  two callers read the same "current max" and both produce the same next
  value.

GUARANTEES:
  - Two concurrent allocations for the same year never return the same ID
  - Within one year, identifiers are strictly increasing in allocation order
  - Identifiers are unique and increasing, not gap-free: an allocation
    whose report is never persisted simply burns the number

FAILURE MODE:
  Transient store failures surface to the caller. No silent retry - a
  retry after a partial commit could double-allocate.
*/
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/solapur/traffic-reports/report"
)

// NextReportID allocates and returns the next identifier for the given
// year, e.g. SLP-2026-0001. The allocation commits immediately; callers
// that pre-allocate for a photo filename and then fail to create the
// report leave a gap, which is acceptable.
func (s *Store) NextReportID(ctx context.Context, year int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := allocateSeq(ctx, tx, year)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit allocation: %w", err)
	}
	return report.FormatReportID(year, seq), nil
}

// allocateSeq performs the atomic insert-or-increment on the year counter
// and reads back the issued sequence, all on the caller's transaction.
func allocateSeq(ctx context.Context, tx *sql.Tx, year int) (int, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO report_id_counter (year, last_seq) VALUES (?, 1)
		ON CONFLICT(year) DO UPDATE SET last_seq = last_seq + 1`, year)
	if err != nil {
		return 0, fmt.Errorf("failed to advance year counter: %w", err)
	}

	var seq int
	err = tx.QueryRowContext(ctx,
		`SELECT last_seq FROM report_id_counter WHERE year = ?`, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to read year counter: %w", err)
	}
	return seq, nil
}

// newInternalID returns the opaque primary key for a report. Never exposed
// for citizen lookup.
func newInternalID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
