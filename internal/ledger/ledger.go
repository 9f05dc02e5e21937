// Package ledger tracks which message identifiers have already been handled,
// so repeated runs never reprocess a message and the first run can be detected.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"jobtrack-agent/internal/domain"
)

// Processing outcomes recorded per message. Once written, an entry is never
// rewritten; the orchestrator filters seen identifiers before processing.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
)

const subjectLimit = 100

type Entry struct {
	ProcessedAt time.Time `json:"processed_at"`
	Subject     string    `json:"subject"`
	Outcome     string    `json:"result"`
}

// Ledger holds the whole seen-set in memory and rewrites the backing file on
// every mutation. Write-through with no batching: volumes are bounded by the
// mailbox fetch size, and the rewrite is the only durability guarantee against
// a crash mid-run.
type Ledger struct {
	path    string
	entries map[string]Entry
	now     func() time.Time
}

// Open loads the ledger file at path, creating parent directories as needed.
// A missing file means a fresh ledger; a corrupt file is logged and replaced
// rather than aborting the run.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ledger dir: %w", err)
	}

	l := &Ledger{path: path, entries: make(map[string]Entry), now: time.Now}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if err := json.Unmarshal(b, &l.entries); err != nil {
		log.Printf("[ledger] %s is corrupt, starting fresh: %v", path, err)
		l.entries = make(map[string]Entry)
	}
	return l, nil
}

// Seen reports whether id has already been handled.
func (l *Ledger) Seen(id string) bool {
	_, ok := l.entries[id]
	return ok
}

// Mark records the outcome for id and persists immediately.
func (l *Ledger) Mark(id, subject, outcome string) error {
	if len(subject) > subjectLimit {
		subject = subject[:subjectLimit]
	}
	l.entries[id] = Entry{
		ProcessedAt: l.now(),
		Subject:     subject,
		Outcome:     outcome,
	}
	return l.save()
}

// FilterNew drops messages whose identifier is already in the ledger.
// Calling it repeatedly without intervening Marks yields the same output.
func (l *Ledger) FilterNew(msgs []domain.RawMessage) []domain.RawMessage {
	out := make([]domain.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		if l.Seen(m.ID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Cleanup removes entries whose processed-at is older than retentionDays,
// bounding ledger growth. Already-stored applications are unaffected.
func (l *Ledger) Cleanup(retentionDays int) (int, error) {
	cutoff := l.now().AddDate(0, 0, -retentionDays)

	removed := 0
	for id, e := range l.entries {
		if e.ProcessedAt.Before(cutoff) {
			delete(l.entries, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, l.save()
}

// IsFirstRun is true iff nothing has ever been marked. The orchestrator uses
// it to pick the one-time larger fetch batch.
func (l *Ledger) IsFirstRun() bool {
	return len(l.entries) == 0
}

// Stats returns the total entry count and how many were marked today.
func (l *Ledger) Stats() (total, today int) {
	total = len(l.entries)
	y, m, d := l.now().Date()
	for _, e := range l.entries {
		ey, em, ed := e.ProcessedAt.Date()
		if ey == y && em == m && ed == d {
			today++
		}
	}
	return total, today
}

func (l *Ledger) save() error {
	b, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return os.Rename(tmp, l.path)
}
