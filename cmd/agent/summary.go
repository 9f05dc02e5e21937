package main

import (
	"log"
	"sync"
	"time"

	"jobtrack-agent/internal/agent"
	"jobtrack-agent/internal/notify"
)

// summarizer accumulates run stats and mails a rollup when the day rolls
// over. The summary covers the previous day, so a quiet day sends nothing.
type summarizer struct {
	mu     sync.Mutex
	mailer *notify.Mailer
	day    string
	acc    agent.Stats
	now    func() time.Time
}

func newSummarizer(mailer *notify.Mailer) *summarizer {
	return &summarizer{mailer: mailer, now: time.Now}
}

func (s *summarizer) record(stats agent.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.now().Format("2006-01-02")
	if s.day == "" {
		s.day = day
	}
	if day != s.day {
		s.flushLocked()
		s.day = day
	}
	s.acc.Add(stats)
}

func (s *summarizer) flushLocked() {
	acc := s.acc
	s.acc = agent.Stats{}

	if !s.mailer.Enabled() {
		return
	}
	if acc.NewApplications == 0 && acc.StatusUpdates == 0 && acc.Interviews == 0 && acc.Assessments == 0 {
		return
	}
	err := s.mailer.SendDailySummary(notify.SummaryCounts{
		NewApplications: acc.NewApplications,
		StatusUpdates:   acc.StatusUpdates,
		Interviews:      acc.Interviews,
		Assessments:     acc.Assessments,
	})
	if err != nil {
		log.Printf("[summary] send failed: %v", err)
	}
}
