package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowRoundTrip(t *testing.T) {
	emailDate := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	app := Application{
		Company:      "Acme Corp",
		Position:     "Backend Engineer",
		DateApplied:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:       StatusInterviewScheduled,
		EmailDate:    &emailDate,
		Notes:        "phone screen booked",
		EmailSubject: "Interview scheduled",
		EmailID:      "<abc@mail>",
	}

	row := app.Row()
	require.Len(t, row, 8)
	assert.Equal(t, "2025-03-10", row[0])
	assert.Equal(t, "2025-03-14 09:30", row[4])

	back, err := ApplicationFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, app.Company, back.Company)
	assert.Equal(t, app.Position, back.Position)
	assert.Equal(t, app.Status, back.Status)
	assert.Equal(t, app.Notes, back.Notes)
	assert.Equal(t, app.EmailSubject, back.EmailSubject)
	assert.Equal(t, app.EmailID, back.EmailID)
	require.NotNil(t, back.EmailDate)
	assert.True(t, back.EmailDate.Equal(emailDate))
}

func TestApplicationFromRowShortRow(t *testing.T) {
	app, err := ApplicationFromRow([]string{"", "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", app.Company)
	assert.Equal(t, "", app.Position)
	assert.Equal(t, StatusApplied, app.Status)
	assert.Nil(t, app.EmailDate)
}

func TestApplicationFromRowBadDate(t *testing.T) {
	_, err := ApplicationFromRow([]string{"14/03/2025", "Acme", "Engineer", "Applied", "", "", "", ""})
	require.Error(t, err)

	_, err = ApplicationFromRow([]string{"2025-03-10", "Acme", "Engineer", "Applied", "not a date", "", "", ""})
	require.Error(t, err)
}

func TestStatusAndCategoryMapping(t *testing.T) {
	assert.Equal(t, CategoryRejection, CategoryFromString(" Rejection "))
	assert.Equal(t, CategoryOther, CategoryFromString("spam"))
	assert.Equal(t, CategoryOther, CategoryFromString(""))

	assert.Equal(t, StatusOfferReceived, StatusFromString("Offer Received"))
	assert.Equal(t, StatusApplied, StatusFromString("totally made up"))

	assert.Equal(t, StatusRejected, StatusForCategory(CategoryRejection))
	assert.Equal(t, StatusInterviewScheduled, StatusForCategory(CategoryInterviewInvitation))
	assert.Equal(t, StatusAssessmentReceived, StatusForCategory(CategoryAssessmentRequest))
	assert.Equal(t, StatusOfferReceived, StatusForCategory(CategoryOffer))
	assert.Equal(t, StatusApplied, StatusForCategory(CategoryOther))
}

func TestFuzzyMatch(t *testing.T) {
	assert.True(t, FuzzyMatch("Acme", "Acme Corp"))
	assert.True(t, FuzzyMatch("acme corp", "ACME"))
	assert.True(t, FuzzyMatch("  Acme ", "acme"))
	assert.False(t, FuzzyMatch("Acme", "Initech"))
	assert.False(t, FuzzyMatch("Engineer", "Designer"))
}
