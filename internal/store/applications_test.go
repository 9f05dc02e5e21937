package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtrack-agent/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return New(db.Pool)
}

func sampleApp(company, position string) domain.Application {
	d := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	return domain.Application{
		Company:      company,
		Position:     position,
		DateApplied:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Status:       domain.StatusApplied,
		EmailDate:    &d,
		Notes:        "note",
		EmailSubject: "subject",
		EmailID:      "<id@mail>",
	}
}

func TestInsertAndFindFuzzy(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleApp("Acme Corp", "Backend Engineer")))
	require.NoError(t, s.Insert(ctx, sampleApp("Initech", "SRE")))

	app, id, err := s.Find(ctx, "acme", "Backend Engineer")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, "Acme Corp", app.Company)
	assert.NotZero(t, id)

	// Both directions of the substring match.
	app, _, err = s.Find(ctx, "Initech GmbH", "Senior SRE")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, "Initech", app.Company)

	app, _, err = s.Find(ctx, "Hooli", "Backend Engineer")
	require.NoError(t, err)
	assert.Nil(t, app)
}

func TestUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleApp("Acme", "SRE")))
	app, id, err := s.Find(ctx, "Acme", "SRE")
	require.NoError(t, err)
	require.NotNil(t, app)

	app.Status = domain.StatusRejected
	app.Notes = "note | rejected after onsite"
	require.NoError(t, s.Update(ctx, id, *app))

	got, _, err := s.Find(ctx, "Acme", "SRE")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.Equal(t, "note | rejected after onsite", got.Notes)
}

func TestAllSkipsBadRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleApp("Acme", "SRE")))

	// Damaged row written around the codec.
	_, err := s.db.ExecContext(ctx, `
INSERT INTO applications (date_applied, company, position, status, email_date, notes, email_subject, email_id)
VALUES ('13/05/2025', 'Broken', 'Row', 'Applied', '', '', '', '');`)
	require.NoError(t, err)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Acme", all[0].Company)

	// Find walks past the bad row too.
	app, _, findErr := s.Find(ctx, "Acme", "SRE")
	require.NoError(t, findErr)
	require.NotNil(t, app)
}

func TestFindSkipsRowsMissingIdentity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO applications (date_applied, company, position, status, email_date, notes, email_subject, email_id)
VALUES ('', '', '', 'Applied', '', '', '', '');`)
	require.NoError(t, err)

	// An empty company fuzzy-matches everything, so it must be excluded.
	app, _, err := s.Find(ctx, "Acme", "SRE")
	require.NoError(t, err)
	assert.Nil(t, app)
}
