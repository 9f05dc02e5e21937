// Package agent runs the poll-classify-store cycle: fetch recent mail, drop
// what the ledger has seen, classify the rest, and upsert application rows.
package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobtrack-agent/internal/classify"
	"jobtrack-agent/internal/domain"
	"jobtrack-agent/internal/events"
	"jobtrack-agent/internal/ledger"
	"jobtrack-agent/internal/mailbox"
	"jobtrack-agent/internal/notify"
)

type Mailbox interface {
	Fetch(ctx context.Context, filter mailbox.SearchFilter, max int) ([]domain.RawMessage, error)
}

type ApplicationStore interface {
	Find(ctx context.Context, company, position string) (*domain.Application, int64, error)
	Insert(ctx context.Context, app domain.Application) error
	Update(ctx context.Context, id int64, app domain.Application) error
}

type Parser interface {
	Parse(ctx context.Context, msg domain.RawMessage) classify.Result
}

type Notifier interface {
	Enabled() bool
	NotifyClassification(msg domain.RawMessage, c domain.Classification) error
}

// Config is the per-run tuning the orchestrator needs.
type Config struct {
	DaysBack         int
	FirstRunMessages int
	OngoingMessages  int
	RetentionDays    int
	SenderAny        []string
	SubjectAny       []string
}

// Stats is the outcome rollup for one run.
type Stats struct {
	Checked           int `json:"checked"`
	Processed         int `json:"processed"`
	DuplicatesSkipped int `json:"duplicates_skipped"`
	NewApplications   int `json:"new_applications"`
	StatusUpdates     int `json:"status_updates"`
	Interviews        int `json:"interviews"`
	Assessments       int `json:"assessments"`
	NotificationsSent int `json:"notifications_sent"`
	Errors            int `json:"errors"`
}

// Add accumulates o into s, for daily rollups.
func (s *Stats) Add(o Stats) {
	s.Checked += o.Checked
	s.Processed += o.Processed
	s.DuplicatesSkipped += o.DuplicatesSkipped
	s.NewApplications += o.NewApplications
	s.StatusUpdates += o.StatusUpdates
	s.Interviews += o.Interviews
	s.Assessments += o.Assessments
	s.NotificationsSent += o.NotificationsSent
	s.Errors += o.Errors
}

type Agent struct {
	Mailbox  Mailbox
	Store    ApplicationStore
	Parser   Parser
	Ledger   *ledger.Ledger
	Notifier Notifier
	Hub      *events.Hub
	Cfg      Config

	now func() time.Time
}

func (a *Agent) timeNow() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// Run performs one full cycle. A fetch failure aborts the run; a failure on a
// single message is recorded as an error outcome and the run moves on. The
// returned error only covers run-level failures, so the caller inspects
// Stats.Errors for per-message trouble.
func (a *Agent) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	budget := a.Cfg.OngoingMessages
	if a.Ledger.IsFirstRun() {
		budget = a.Cfg.FirstRunMessages
		log.Printf("[agent] first run, fetching up to %d messages", budget)
	}

	filter := mailbox.SearchFilter{
		Since:      a.timeNow().AddDate(0, 0, -a.Cfg.DaysBack),
		SenderAny:  a.Cfg.SenderAny,
		SubjectAny: a.Cfg.SubjectAny,
	}

	msgs, err := a.Mailbox.Fetch(ctx, filter, budget)
	if err != nil {
		return stats, fmt.Errorf("fetch mailbox: %w", err)
	}
	stats.Checked = len(msgs)

	fresh := a.Ledger.FilterNew(msgs)
	stats.DuplicatesSkipped = len(msgs) - len(fresh)

	for _, msg := range fresh {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		a.handle(ctx, msg, &stats)
	}

	if removed, err := a.Ledger.Cleanup(a.Cfg.RetentionDays); err != nil {
		log.Printf("[agent] ledger cleanup: %v", err)
	} else if removed > 0 {
		log.Printf("[agent] ledger cleanup removed %d entries", removed)
	}

	log.Printf("[agent] run done: checked=%d processed=%d dupes=%d new=%d updates=%d notified=%d errors=%d",
		stats.Checked, stats.Processed, stats.DuplicatesSkipped,
		stats.NewApplications, stats.StatusUpdates, stats.NotificationsSent, stats.Errors)

	if a.Hub != nil {
		a.Hub.Publish(events.MakeEvent("run_complete", 1, stats))
	}
	return stats, nil
}

// handle processes one message and marks its outcome. Each identifier is
// marked exactly once, whatever happens; an errored message is never retried.
func (a *Agent) handle(ctx context.Context, msg domain.RawMessage, stats *Stats) {
	outcome, err := a.process(ctx, msg, stats)
	if err != nil {
		stats.Errors++
		outcome = ledger.OutcomeError
		log.Printf("[agent] message %s: %v", msg.ID, err)
	}
	if err := a.Ledger.Mark(msg.ID, msg.Subject, outcome); err != nil {
		stats.Errors++
		log.Printf("[agent] mark %s: %v", msg.ID, err)
	}
}

func (a *Agent) process(ctx context.Context, msg domain.RawMessage, stats *Stats) (string, error) {
	res := a.Parser.Parse(ctx, msg)
	if res.Record == nil {
		log.Printf("[agent] no record for %q (%s, %.2f)", msg.Subject, res.Classification.Category, res.Classification.Confidence)
		return ledger.OutcomeSkipped, nil
	}
	rec := *res.Record

	existing, id, err := a.Store.Find(ctx, rec.Company, rec.Position)
	if err != nil {
		return "", fmt.Errorf("find %s / %s: %w", rec.Company, rec.Position, err)
	}

	if existing == nil {
		if err := a.Store.Insert(ctx, rec); err != nil {
			return "", err
		}
		stats.NewApplications++
		log.Printf("[agent] new application: %s - %s (%s)", rec.Company, rec.Position, rec.Status)
	} else {
		merged := Merge(*existing, rec, res.Classification)
		if err := a.Store.Update(ctx, id, merged); err != nil {
			return "", err
		}
		stats.StatusUpdates++
		log.Printf("[agent] updated %s - %s: %s -> %s", existing.Company, existing.Position, existing.Status, merged.Status)
	}

	switch res.Classification.Category {
	case domain.CategoryInterviewInvitation:
		stats.Interviews++
	case domain.CategoryAssessmentRequest:
		stats.Assessments++
	}

	if a.Notifier != nil && a.Notifier.Enabled() && notify.ShouldNotify(res.Classification) {
		// Alert delivery is best-effort; the row is already stored.
		if err := a.Notifier.NotifyClassification(msg, res.Classification); err != nil {
			log.Printf("[agent] notify %s: %v", msg.ID, err)
		} else {
			stats.NotificationsSent++
		}
	}

	stats.Processed++
	return ledger.OutcomeProcessed, nil
}

// ProcessMessage runs the classify-store path for one already-fetched message,
// marking the ledger the same way a normal run would. Used by the
// single-message replay mode.
func (a *Agent) ProcessMessage(ctx context.Context, msg domain.RawMessage) (Stats, error) {
	var stats Stats
	stats.Checked = 1
	if a.Ledger.Seen(msg.ID) {
		stats.DuplicatesSkipped = 1
		return stats, nil
	}
	a.handle(ctx, msg, &stats)
	return stats, nil
}
