package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtrack-agent/internal/domain"
)

type stubStrategy struct {
	name string
	res  Result
	err  error
}

func (s stubStrategy) Name() string { return s.name }
func (s stubStrategy) Classify(context.Context, domain.RawMessage) (Result, error) {
	return s.res, s.err
}

func TestPipelineFirstRecordWins(t *testing.T) {
	first := stubStrategy{name: "a", res: Result{
		Classification: domain.Classification{Category: domain.CategoryOffer, Company: "Acme", Position: "Engineer"},
		Record:         &domain.Application{Company: "Acme", Position: "Engineer"},
	}}
	second := stubStrategy{name: "b", res: Result{
		Classification: domain.Classification{Category: domain.CategoryOther},
	}}

	p := NewPipeline(first, second)
	res := p.Parse(context.Background(), domain.RawMessage{})
	require.NotNil(t, res.Record)
	assert.Equal(t, "Acme", res.Record.Company)
}

func TestPipelineErrorFallsThrough(t *testing.T) {
	failing := stubStrategy{name: "model", err: errors.New("api down")}
	fallback := stubStrategy{name: "patterns", res: Result{
		Classification: domain.Classification{Category: domain.CategoryRejection, Confidence: 0.8},
	}}

	p := NewPipeline(failing, fallback)
	res := p.Parse(context.Background(), domain.RawMessage{})
	assert.Nil(t, res.Record)
	assert.Equal(t, domain.CategoryRejection, res.Classification.Category)
}

func TestPipelineKeepsLastClassificationWithoutRecord(t *testing.T) {
	noRecord := stubStrategy{name: "model", res: Result{
		Classification: domain.Classification{Category: domain.CategoryOther, Confidence: 0.5},
	}}
	p := NewPipeline(noRecord)
	res := p.Parse(context.Background(), domain.RawMessage{})
	assert.Nil(t, res.Record)
	assert.Equal(t, domain.CategoryOther, res.Classification.Category)
}

func TestPatternStrategyBuildsRecord(t *testing.T) {
	s := NewPatternStrategy()
	msg := domain.RawMessage{
		ID:      "<m1@mail>",
		Subject: "Thank you for your application",
		Sender:  "careers@acme.com",
		Date:    time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
		Body:    "We have received your application for the Backend Engineer position.",
	}

	res, err := s.Classify(context.Background(), msg)
	require.NoError(t, err)
	require.NotNil(t, res.Record)

	assert.Equal(t, domain.CategoryApplicationConfirmation, res.Classification.Category)
	assert.Equal(t, 0.6, res.Classification.Confidence)
	assert.Equal(t, "Acme", res.Record.Company)
	assert.Equal(t, "Backend Engineer", res.Record.Position)
	assert.Equal(t, domain.StatusApplied, res.Record.Status)
	assert.Equal(t, "<m1@mail>", res.Record.EmailID)
	assert.Contains(t, res.Record.Notes, "Parsed with patterns")
}

func TestPatternStrategyNoRecordWithoutCompany(t *testing.T) {
	s := NewPatternStrategy()
	msg := domain.RawMessage{
		Subject: "Thank you for your application",
		Sender:  "someone@gmail.com",
		Body:    "for the Backend Engineer position",
	}
	res, err := s.Classify(context.Background(), msg)
	require.NoError(t, err)
	assert.Nil(t, res.Record)
	assert.Equal(t, domain.CategoryApplicationConfirmation, res.Classification.Category)
}
