package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"jobtrack-agent/internal/domain"
)

// Migrate brings the schema to the current version. The applications table is
// the durable form of the fixed 8-column row: all cells TEXT, dates in the
// same layouts the row codec uses.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS applications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date_applied TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL,
  position TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'Applied',
  email_date TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  email_subject TEXT NOT NULL DEFAULT '',
  email_id TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_applications_company
ON applications(company);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

// Store reads and writes application rows. Lookup is a deliberate full scan
// with the fuzzy (company, position) match; there is no indexed natural key
// because the match is substring-based in both directions.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Find returns the first row whose company and position both fuzzy-match, with
// its rowid for a later Update. Rows missing company or position, or carrying
// unparseable dates, are skipped and logged, never fatal.
func (s *Store) Find(ctx context.Context, company, position string) (*domain.Application, int64, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, date_applied, company, position, status, email_date, notes, email_subject, email_id
FROM applications
ORDER BY id;`)
	if err != nil {
		return nil, 0, fmt.Errorf("scan applications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		id, app, err := scanApplication(rows)
		if err != nil {
			log.Printf("[store] skipping bad row: %v", err)
			continue
		}
		if app.Company == "" || app.Position == "" {
			continue
		}
		if domain.FuzzyMatch(app.Company, company) && domain.FuzzyMatch(app.Position, position) {
			return &app, id, rows.Err()
		}
	}
	return nil, 0, rows.Err()
}

// All returns every parseable row, skipping damaged ones.
func (s *Store) All(ctx context.Context) ([]domain.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, date_applied, company, position, status, email_date, notes, email_subject, email_id
FROM applications
ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("scan applications: %w", err)
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		_, app, err := scanApplication(rows)
		if err != nil {
			log.Printf("[store] skipping bad row: %v", err)
			continue
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, app domain.Application) error {
	r := app.Row()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO applications (date_applied, company, position, status, email_date, notes, email_subject, email_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		r[0], r[1], r[2], r[3], r[4], r[5], r[6], r[7],
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id int64, app domain.Application) error {
	r := app.Row()
	_, err := s.db.ExecContext(ctx, `
UPDATE applications
SET date_applied = ?, company = ?, position = ?, status = ?, email_date = ?, notes = ?, email_subject = ?, email_id = ?
WHERE id = ?;`,
		r[0], r[1], r[2], r[3], r[4], r[5], r[6], r[7], id,
	)
	if err != nil {
		return fmt.Errorf("update application %d: %w", id, err)
	}
	return nil
}

func scanApplication(rows *sql.Rows) (int64, domain.Application, error) {
	var id int64
	cells := make([]string, 8)
	if err := rows.Scan(&id, &cells[0], &cells[1], &cells[2], &cells[3], &cells[4], &cells[5], &cells[6], &cells[7]); err != nil {
		return 0, domain.Application{}, err
	}
	app, err := domain.ApplicationFromRow(cells)
	if err != nil {
		return 0, domain.Application{}, fmt.Errorf("row %d: %w", id, err)
	}
	return id, app, nil
}
