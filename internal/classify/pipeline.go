package classify

import (
	"context"
	"fmt"
	"log"

	"jobtrack-agent/internal/domain"
)

// Result is what a classification strategy produces for one message.
// Classification is always populated; Record is nil when the message does not
// carry enough information (empty company or position) to track.
type Result struct {
	Classification domain.Classification
	Record         *domain.Application
}

// Strategy is one tier of the classification pipeline. Strategies are ranked:
// the pipeline walks them in order and stops at the first one that yields a
// record.
type Strategy interface {
	Name() string
	Classify(ctx context.Context, msg domain.RawMessage) (Result, error)
}

// Pipeline runs strategies in rank order. A strategy error is non-fatal; the
// next tier takes over. The last tier (patterns) never errors, so Parse always
// returns a usable Classification even when no Record was built.
type Pipeline struct {
	strategies []Strategy
}

func NewPipeline(strategies ...Strategy) *Pipeline {
	return &Pipeline{strategies: strategies}
}

// Parse classifies msg and, when company and position could be established,
// builds the application record it implies.
func (p *Pipeline) Parse(ctx context.Context, msg domain.RawMessage) Result {
	var last Result
	for _, s := range p.strategies {
		res, err := s.Classify(ctx, msg)
		if err != nil {
			log.Printf("[classify] %s failed, trying next tier: %v", s.Name(), err)
			continue
		}
		if res.Record != nil {
			return res
		}
		last = res
	}
	return last
}

// PatternStrategy is the always-available fallback tier built on the
// deterministic pattern classifier.
type PatternStrategy struct {
	Classifier PatternClassifier
}

func NewPatternStrategy() *PatternStrategy {
	return &PatternStrategy{Classifier: PatternClassifier{Profile: FallbackProfile}}
}

func (s *PatternStrategy) Name() string { return "patterns" }

func (s *PatternStrategy) Classify(_ context.Context, msg domain.RawMessage) (Result, error) {
	category, confidence := s.Classifier.Classify(msg.Subject + " " + msg.Body)

	res := Result{
		Classification: domain.Classification{
			Category:   category,
			Company:    ExtractCompany(msg.Sender, msg.Subject, msg.Body),
			Position:   ExtractPosition(msg.Subject, msg.Body),
			Confidence: confidence,
		},
	}

	if res.Classification.Company == "" || res.Classification.Position == "" {
		return res, nil
	}

	emailDate := msg.Date
	res.Record = &domain.Application{
		Company:      res.Classification.Company,
		Position:     res.Classification.Position,
		DateApplied:  msg.Date,
		Status:       domain.StatusForCategory(category),
		EmailDate:    &emailDate,
		Notes:        fmt.Sprintf("Parsed with patterns (confidence: %.1f)", confidence),
		EmailSubject: msg.Subject,
		EmailID:      msg.ID,
	}
	return res, nil
}
