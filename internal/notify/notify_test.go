package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobtrack-agent/internal/domain"
)

func TestShouldNotify(t *testing.T) {
	base := domain.Classification{
		Category:   domain.CategoryInterviewInvitation,
		Company:    "Acme",
		Position:   "SRE",
		Confidence: 0.9,
	}
	assert.True(t, ShouldNotify(base))

	assessment := base
	assessment.Category = domain.CategoryAssessmentRequest
	assert.True(t, ShouldNotify(assessment))

	lowConf := base
	lowConf.Confidence = 0.6
	assert.False(t, ShouldNotify(lowConf))

	noCompany := base
	noCompany.Company = ""
	assert.False(t, ShouldNotify(noCompany))

	noPosition := base
	noPosition.Position = ""
	assert.False(t, ShouldNotify(noPosition))

	for _, c := range []domain.Category{
		domain.CategoryApplicationConfirmation,
		domain.CategoryRejection,
		domain.CategoryOffer,
		domain.CategoryOther,
	} {
		other := base
		other.Category = c
		assert.False(t, ShouldNotify(other), "category %s", c)
	}
}

func TestMailerEnabled(t *testing.T) {
	m := &Mailer{}
	assert.False(t, m.Enabled())

	m = &Mailer{From: "me@acme.com", Password: "pw", Recipients: []string{"me@acme.com"}}
	assert.True(t, m.Enabled())

	m.Password = ""
	assert.False(t, m.Enabled())
}

func TestNotifyClassificationRejectsOtherCategories(t *testing.T) {
	m := &Mailer{From: "me@acme.com", Password: "pw", Recipients: []string{"me@acme.com"}}
	err := m.NotifyClassification(domain.RawMessage{}, domain.Classification{Category: domain.CategoryRejection})
	assert.Error(t, err)
}
