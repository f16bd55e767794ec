/*
Package sqlite provides the SQLite-backed report store and ID allocator.

PURPOSE:
  Implements persistence for citizen reports and the per-year identifier
  counter. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  reports:            One row per citizen submission. Rows are inserted
                      once, then only status and photo verification change.
                      No DELETE exists.
  report_id_counter:  One row per calendar year holding the last issued
                      sequence number. Created lazily, incremented
                      atomically, never decremented or deleted.

CONCURRENCY:
  Identifier allocation is an atomic insert-or-increment upsert followed by
  a read of the resulting value, inside one transaction. Two concurrent
  callers can never observe the same sequence. A sync.Mutex additionally
  serializes in-process writers; cross-process safety comes from the
  database, not the mutex.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./solapur_traffic.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(), including tolerant column adds so older
  local databases keep working when new columns appear.

SEE ALSO:
  - allocator.go: year-counter allocation
  - report/: domain types persisted here
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/solapur/traffic-reports/report"
)

// timeLayout is a fixed-width RFC3339 form so stored UTC timestamps sort
// lexicographically. RFC3339Nano drops trailing zeros and does not.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements report persistence and identifier allocation.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Reports (insert once, mutate status/verification only)
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL UNIQUE,
		issue_type TEXT NOT NULL,
		description TEXT,
		image_url TEXT,
		photo_path TEXT,
		latitude REAL,
		longitude REAL,
		location_text TEXT,
		phone_number TEXT NOT NULL,
		status TEXT NOT NULL,
		photo_verification_status TEXT,
		created_at TEXT NOT NULL,
		approved_at TEXT,
		closed_at TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_created_at
		ON reports(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_reports_phone
		ON reports(phone_number);
	CREATE INDEX IF NOT EXISTS idx_reports_status
		ON reports(status);
	CREATE INDEX IF NOT EXISTS idx_reports_issue_type
		ON reports(issue_type);

	-- Year counter backing the ID allocator. One row per year.
	CREATE TABLE IF NOT EXISTS report_id_counter (
		year INTEGER PRIMARY KEY,
		last_seq INTEGER NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.addMissingColumns()
}

// addMissingColumns upgrades databases created before newer columns existed.
func (s *Store) addMissingColumns() error {
	rows, err := s.db.Query(`PRAGMA table_info(reports)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := map[string]bool{}
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !existing["photo_path"] {
		if _, err := s.db.Exec(`ALTER TABLE reports ADD COLUMN photo_path TEXT`); err != nil {
			return err
		}
	}
	if !existing["photo_verification_status"] {
		if _, err := s.db.Exec(`ALTER TABLE reports ADD COLUMN photo_verification_status TEXT`); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// CREATE
// =============================================================================

// CreateReport persists a new report with status RECEIVED. When the draft
// carries no pre-allocated ReportID, one is allocated inside the same
// transaction as the insert, so a failed insert never half-commits.
func (s *Store) CreateReport(ctx context.Context, d report.Draft) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rid := d.ReportID
	if rid == "" {
		seq, err := allocateSeq(ctx, tx, now.Year())
		if err != nil {
			return nil, err
		}
		rid = report.FormatReportID(now.Year(), seq)
	}

	r := &report.Report{
		InternalID:   newInternalID(),
		ReportID:     rid,
		IssueType:    d.IssueType,
		Description:  d.Description,
		ImageURL:     d.ImageURL,
		PhotoPath:    d.PhotoPath,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		LocationText: d.LocationText,
		PhoneNumber:  report.NormalizePhone(d.PhoneNumber),
		Status:       report.StatusReceived,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (
			id, report_id, issue_type, description, image_url, photo_path,
			latitude, longitude, location_text, phone_number, status,
			photo_verification_status, created_at, approved_at, closed_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.InternalID, r.ReportID, string(r.IssueType),
		nullString(r.Description), nullString(r.ImageURL), nullString(r.PhotoPath),
		r.Latitude, r.Longitude, nullString(r.LocationText), r.PhoneNumber,
		string(r.Status), nullString(string(r.PhotoVerification)),
		formatTime(r.CreatedAt), nil, nil, formatTime(r.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit report: %w", err)
	}
	return r, nil
}

// =============================================================================
// LOOKUPS
// =============================================================================

const reportColumns = `
	id, report_id, issue_type, description, image_url, photo_path,
	latitude, longitude, location_text, phone_number, status,
	photo_verification_status, created_at, approved_at, closed_at, updated_at`

// GetByReportID returns the report with the given human-facing identifier,
// or nil if none exists.
func (s *Store) GetByReportID(ctx context.Context, reportID string) (*report.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE report_id = ?`, reportID)
	return scanReport(row)
}

// GetByInternalID returns the report with the given internal key, or nil.
func (s *Store) GetByInternalID(ctx context.Context, internalID string) (*report.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = ?`, internalID)
	return scanReport(row)
}

// ListByPhone returns all reports submitted from the given phone number,
// newest first. The phone is normalized before comparison.
func (s *Store) ListByPhone(ctx context.Context, phone string) ([]*report.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE phone_number = ?
		 ORDER BY created_at DESC`, report.NormalizePhone(phone))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports by phone: %w", err)
	}
	return scanReports(rows)
}

// ListFilter narrows List. Nil fields match everything. Limit <= 0 means
// no limit; clamping to a sane range is the caller's responsibility.
type ListFilter struct {
	Status    *report.Status
	IssueType *report.IssueType
	Skip      int
	Limit     int
}

// List returns reports newest first with optional filters and
// offset/limit pagination.
func (s *Store) List(ctx context.Context, f ListFilter) ([]*report.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*f.Status))
	}
	if f.IssueType != nil {
		where = append(where, `issue_type = ?`)
		args = append(args, string(*f.IssueType))
	}
	for i, w := range where {
		if i == 0 {
			query += ` WHERE ` + w
		} else {
			query += ` AND ` + w
		}
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Skip)
	} else if f.Skip > 0 {
		// SQLite requires a LIMIT clause to use OFFSET.
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, f.Skip)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return scanReports(rows)
}

// ListWithPhotos returns reports that carry a photo (local or hosted),
// newest first. Used by the verification queue.
func (s *Store) ListWithPhotos(ctx context.Context) ([]*report.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports
		 WHERE (photo_path IS NOT NULL AND photo_path != '')
		    OR (image_url IS NOT NULL AND image_url != '')
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list photo reports: %w", err)
	}
	return scanReports(rows)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// UpdateStatus moves the report to the given status, stamping approved_at /
// closed_at only on the first qualifying transition. Returns nil if no
// report matches.
func (s *Store) UpdateStatus(ctx context.Context, reportID string, status report.Status) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE report_id = ?`, reportID)
	r, err := scanReport(row)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	report.ApplyStatus(r, status, time.Now().UTC())

	_, err = tx.ExecContext(ctx,
		`UPDATE reports SET status = ?, approved_at = ?, closed_at = ?, updated_at = ?
		 WHERE report_id = ?`,
		string(r.Status), formatTimePtr(r.ApprovedAt), formatTimePtr(r.ClosedAt),
		formatTime(r.UpdatedAt), reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return r, nil
}

// SetPhotoVerification records the manual photo review label.
// Returns nil if no report matches.
func (s *Store) SetPhotoVerification(ctx context.Context, reportID string, v report.PhotoVerification) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET photo_verification_status = ?, updated_at = ?
		 WHERE report_id = ?`,
		string(v), formatTime(now), reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to set photo verification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByReportID(ctx, reportID)
}

// =============================================================================
// ROW SCANNING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*report.Report, error) {
	var (
		r                       report.Report
		description, imageURL   sql.NullString
		photoPath, locationText sql.NullString
		verification            sql.NullString
		latitude, longitude     sql.NullFloat64
		createdAt, updatedAt    string
		approvedAt, closedAt    sql.NullString
	)
	err := row.Scan(
		&r.InternalID, &r.ReportID, (*string)(&r.IssueType),
		&description, &imageURL, &photoPath,
		&latitude, &longitude, &locationText, &r.PhoneNumber,
		(*string)(&r.Status), &verification,
		&createdAt, &approvedAt, &closedAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	r.Description = description.String
	r.ImageURL = imageURL.String
	r.PhotoPath = photoPath.String
	r.LocationText = locationText.String
	r.PhotoVerification = report.PhotoVerification(verification.String)
	if latitude.Valid {
		r.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		r.Longitude = &longitude.Float64
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if r.ApprovedAt, err = parseTimePtr(approvedAt); err != nil {
		return nil, err
	}
	if r.ClosedAt, err = parseTimePtr(closedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanReports(rows *sql.Rows) ([]*report.Report, error) {
	defer rows.Close()
	var out []*report.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Older rows may predate the fixed-width layout.
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
