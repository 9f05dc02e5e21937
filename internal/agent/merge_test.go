package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobtrack-agent/internal/domain"
)

func baseExisting() domain.Application {
	d := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	return domain.Application{
		Company:      "Acme Corp",
		Position:     "Backend Engineer",
		DateApplied:  time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
		Status:       domain.StatusApplied,
		EmailDate:    &d,
		Notes:        "applied via website",
		EmailSubject: "Thank you for applying",
		EmailID:      "<first@mail>",
	}
}

func incomingFor(c domain.Category, notes string) (domain.Application, domain.Classification) {
	d := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	inc := domain.Application{
		Company:      "Acme",
		Position:     "Backend Engineer",
		Status:       domain.StatusForCategory(c),
		EmailDate:    &d,
		Notes:        notes,
		EmailSubject: "Follow up",
		EmailID:      "<second@mail>",
	}
	return inc, domain.Classification{Category: c, Company: "Acme", Position: "Backend Engineer", Confidence: 0.9}
}

func TestMergeStatusOverrides(t *testing.T) {
	for _, c := range []domain.Category{
		domain.CategoryRejection,
		domain.CategoryInterviewInvitation,
		domain.CategoryAssessmentRequest,
		domain.CategoryOffer,
	} {
		inc, cls := incomingFor(c, "")
		out := Merge(baseExisting(), inc, cls)
		assert.Equal(t, domain.StatusForCategory(c), out.Status, "category %s", c)
	}
}

func TestMergeWeakCategoriesKeepStatus(t *testing.T) {
	existing := baseExisting()
	existing.Status = domain.StatusInterviewScheduled

	for _, c := range []domain.Category{domain.CategoryApplicationConfirmation, domain.CategoryOther} {
		inc, cls := incomingFor(c, "")
		out := Merge(existing, inc, cls)
		assert.Equal(t, domain.StatusInterviewScheduled, out.Status, "category %s", c)
	}
}

func TestMergeKeepsIdentityFields(t *testing.T) {
	inc, cls := incomingFor(domain.CategoryInterviewInvitation, "")
	out := Merge(baseExisting(), inc, cls)

	assert.Equal(t, "Acme Corp", out.Company)
	assert.Equal(t, baseExisting().DateApplied, out.DateApplied)
	assert.Equal(t, "<second@mail>", out.EmailID)
	assert.Equal(t, "Follow up", out.EmailSubject)
	assert.Equal(t, inc.EmailDate, out.EmailDate)
}

func TestMergeNotesAppend(t *testing.T) {
	inc, cls := incomingFor(domain.CategoryInterviewInvitation, "recruiter call booked")
	out := Merge(baseExisting(), inc, cls)
	assert.Equal(t, "applied via website | recruiter call booked", out.Notes)
}

func TestMergeNotesNoDuplicate(t *testing.T) {
	inc, cls := incomingFor(domain.CategoryOther, "applied via website")
	out := Merge(baseExisting(), inc, cls)
	assert.Equal(t, "applied via website", out.Notes)
}

func TestMergeNotesIntoEmpty(t *testing.T) {
	existing := baseExisting()
	existing.Notes = ""
	inc, cls := incomingFor(domain.CategoryOther, "first note")
	out := Merge(existing, inc, cls)
	assert.Equal(t, "first note", out.Notes)
}

func TestMergeEmptyIncomingNotes(t *testing.T) {
	inc, cls := incomingFor(domain.CategoryOther, "")
	out := Merge(baseExisting(), inc, cls)
	assert.Equal(t, "applied via website", out.Notes)
}
