package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobtrack-agent/internal/domain"
)

func TestPatternClassifierCategories(t *testing.T) {
	c := PatternClassifier{Profile: ScreenProfile}

	cases := []struct {
		text string
		want domain.Category
		conf float64
	}{
		{"We regret to inform you that we are moving on", domain.CategoryRejection, 0.9},
		{"Unfortunately you were not selected for this role", domain.CategoryRejection, 0.9},
		{"Your interview has been scheduled for Monday", domain.CategoryInterviewInvitation, 0.8},
		{"We would like to interview you next week", domain.CategoryInterviewInvitation, 0.8},
		{"Please take this coding challenge within 7 days", domain.CategoryAssessmentRequest, 0.8},
		{"Complete the technical assessment at the link below", domain.CategoryAssessmentRequest, 0.8},
		{"Thank you for your application to Acme", domain.CategoryApplicationConfirmation, 0.7},
		{"Your application has been received", domain.CategoryApplicationConfirmation, 0.7},
		{"Weekly newsletter: 10 jobs near you", domain.CategoryOther, 0.5},
		{"", domain.CategoryOther, 0.5},
	}
	for _, tc := range cases {
		got, conf := c.Classify(tc.text)
		assert.Equal(t, tc.want, got, "text: %q", tc.text)
		assert.Equal(t, tc.conf, conf, "text: %q", tc.text)
	}
}

func TestPatternClassifierRejectionWinsOverlap(t *testing.T) {
	c := PatternClassifier{Profile: FallbackProfile}

	// Carries both rejection and interview keywords; rejection is checked first.
	got, conf := c.Classify("We regret to inform you we will not schedule an interview")
	assert.Equal(t, domain.CategoryRejection, got)
	assert.Equal(t, 0.8, conf)
}

func TestPatternClassifierCaseInsensitive(t *testing.T) {
	c := PatternClassifier{Profile: FallbackProfile}
	got, _ := c.Classify("WE REGRET TO INFORM YOU")
	assert.Equal(t, domain.CategoryRejection, got)
}

func TestExtractCompany(t *testing.T) {
	assert.Equal(t, "Acme", ExtractCompany("careers@acme.com", "", ""))
	assert.Equal(t, "Initech", ExtractCompany("Recruiting <noreply@initech.io>", "", ""))

	// Webmail domains carry no employer signal; fall through to the subject.
	assert.Equal(t, "Acme Corp", ExtractCompany("someone@gmail.com", "An update from Acme Corp", ""))
	assert.Equal(t, "Initech", ExtractCompany("hr@hotmail.com", "Initech team news", ""))
	assert.Equal(t, "", ExtractCompany("someone@gmail.com", "no employer here", ""))
	assert.Equal(t, "", ExtractCompany("", "", ""))
}

func TestExtractPosition(t *testing.T) {
	assert.Equal(t, "Software Engineer", ExtractPosition("Position: Software Engineer, Remote", ""))
	assert.Equal(t, "Backend Engineer", ExtractPosition("", "Thanks for applying for the Backend Engineer position at Acme."))
	assert.Equal(t, "Data Analyst", ExtractPosition("Role: Data Analyst", "for the Site Reliability Engineer role"))
	assert.Equal(t, "", ExtractPosition("hello", "nothing to see"))
}
