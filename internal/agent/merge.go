package agent

import (
	"strings"

	"jobtrack-agent/internal/domain"
)

// Merge folds a freshly classified record into an existing application row.
// Identity fields (company, position, date applied) belong to the existing
// row; the incoming message always wins the email metadata. Status only moves
// for categories that imply a definite transition, so an unrelated follow-up
// mail never knocks a row back to Applied.
func Merge(existing, incoming domain.Application, c domain.Classification) domain.Application {
	out := existing

	switch c.Category {
	case domain.CategoryRejection,
		domain.CategoryInterviewInvitation,
		domain.CategoryAssessmentRequest,
		domain.CategoryOffer:
		out.Status = domain.StatusForCategory(c.Category)
	}

	out.EmailDate = incoming.EmailDate
	out.EmailSubject = incoming.EmailSubject
	out.EmailID = incoming.EmailID

	if incoming.Notes != "" && !strings.Contains(out.Notes, incoming.Notes) {
		if out.Notes == "" {
			out.Notes = incoming.Notes
		} else {
			out.Notes += " | " + incoming.Notes
		}
	}
	return out
}
