package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the classification label assigned to an incoming message.
type Category string

const (
	CategoryApplicationConfirmation Category = "application_confirmation"
	CategoryRejection               Category = "rejection"
	CategoryInterviewInvitation     Category = "interview_invitation"
	CategoryAssessmentRequest       Category = "assessment_request"
	CategoryOffer                   Category = "offer"
	CategoryOther                   Category = "other"
)

// Status is the lifecycle state of a tracked application.
type Status string

const (
	StatusApplied            Status = "Applied"
	StatusRejected           Status = "Rejected"
	StatusInterviewScheduled Status = "Interview Scheduled"
	StatusAssessmentReceived Status = "Assessment Received"
	StatusOfferReceived      Status = "Offer Received"
	StatusWithdrawn          Status = "Withdrawn"
	StatusNoResponse         Status = "No Response"
)

// CategoryFromString maps a free-text category label to a known Category.
// Anything unrecognized becomes CategoryOther.
func CategoryFromString(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryApplicationConfirmation, CategoryRejection, CategoryInterviewInvitation,
		CategoryAssessmentRequest, CategoryOffer:
		return Category(strings.ToLower(strings.TrimSpace(s)))
	default:
		return CategoryOther
	}
}

// StatusFromString maps a free-text status label to a known Status.
// Anything unrecognized becomes StatusApplied.
func StatusFromString(s string) Status {
	switch Status(strings.TrimSpace(s)) {
	case StatusApplied, StatusRejected, StatusInterviewScheduled,
		StatusAssessmentReceived, StatusOfferReceived, StatusWithdrawn, StatusNoResponse:
		return Status(strings.TrimSpace(s))
	default:
		return StatusApplied
	}
}

// StatusForCategory gives the status a freshly classified message implies.
func StatusForCategory(c Category) Status {
	switch c {
	case CategoryRejection:
		return StatusRejected
	case CategoryInterviewInvitation:
		return StatusInterviewScheduled
	case CategoryAssessmentRequest:
		return StatusAssessmentReceived
	case CategoryOffer:
		return StatusOfferReceived
	default:
		return StatusApplied
	}
}

// Application is one tracked job application, keyed by (company, position)
// via FuzzyMatch rather than exact equality.
type Application struct {
	Company      string
	Position     string
	DateApplied  time.Time
	Status       Status
	EmailDate    *time.Time
	Notes        string
	EmailSubject string
	EmailID      string
}

const (
	dateLayout      = "2006-01-02"
	emailDateLayout = "2006-01-02 15:04"
)

// Row serializes the application into the fixed 8-column tabular form:
// [date-applied, company, position, status, email-date, notes, subject, email-id].
func (a Application) Row() []string {
	dateApplied := ""
	if !a.DateApplied.IsZero() {
		dateApplied = a.DateApplied.Format(dateLayout)
	}
	emailDate := ""
	if a.EmailDate != nil && !a.EmailDate.IsZero() {
		emailDate = a.EmailDate.Format(emailDateLayout)
	}
	return []string{
		dateApplied,
		a.Company,
		a.Position,
		string(a.Status),
		emailDate,
		a.Notes,
		a.EmailSubject,
		a.EmailID,
	}
}

// ApplicationFromRow parses the 8-column row form back into an Application.
// Short rows are tolerated; missing cells become zero values. An unparseable
// date-applied cell is an error so the caller can skip the row.
func ApplicationFromRow(row []string) (Application, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var a Application
	a.Company = cell(1)
	a.Position = cell(2)
	a.Status = StatusFromString(cell(3))
	a.Notes = cell(5)
	a.EmailSubject = cell(6)
	a.EmailID = cell(7)

	if d := cell(0); d != "" {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return Application{}, fmt.Errorf("parse date applied %q: %w", d, err)
		}
		a.DateApplied = t
	}
	if d := cell(4); d != "" {
		t, err := time.Parse(emailDateLayout, d)
		if err != nil {
			return Application{}, fmt.Errorf("parse email date %q: %w", d, err)
		}
		a.EmailDate = &t
	}
	return a, nil
}

// FuzzyMatch reports whether two human-entered fields refer to the same thing:
// equal when either is a case-insensitive substring of the other, so "Acme"
// matches "Acme Corp". Short values can false-positive ("AT" vs "ATLabs");
// that looseness is intentional.
func FuzzyMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return strings.Contains(a, b) || strings.Contains(b, a)
}
