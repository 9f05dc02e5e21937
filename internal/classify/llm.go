package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"jobtrack-agent/internal/domain"
)

// Completer is the narrow slice of a chat-completion client the model tier
// needs. Kept small so tests can substitute a canned implementation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const DefaultModel = "gpt-4o-mini"

// OpenAIClient adapts the go-openai client to the Completer contract.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

const promptTemplate = `You are an expert at analyzing job-related emails. Extract job application information and classify email types accurately.

Analyze this job-related email and extract the following information in JSON format:

Email Subject: %s
Email Sender: %s
Email Content: %s...

Please provide the response in this exact JSON format:
{
    "email_type": "application_confirmation|rejection|interview_invitation|assessment_request|offer|other",
    "company": "Company name",
    "position": "Job position/title",
    "status": "Applied|Rejected|Interview Scheduled|Assessment Received|Offer Received|No Response",
    "confidence": 0.0-1.0,
    "notes": "Any additional relevant information"
}

Guidelines:
- email_type should be one of: application_confirmation, rejection, interview_invitation, assessment_request, offer, other
- Extract company name from email domain or content
- Extract job position/title from subject or content
- Set confidence based on how certain you are about the classification
- Include relevant details in notes
`

const promptBodyLimit = 1000

// LLMStrategy is the generative tier. Any transport or parse failure is
// returned as an error so the pipeline drops to the pattern tier.
type LLMStrategy struct {
	llm     Completer
	limiter *rate.Limiter
}

// NewLLMStrategy wraps llm with a request budget of rps calls per second.
func NewLLMStrategy(llm Completer, rps float64) *LLMStrategy {
	if rps <= 0 {
		rps = 1
	}
	return &LLMStrategy{llm: llm, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (s *LLMStrategy) Name() string { return "model" }

func (s *LLMStrategy) Classify(ctx context.Context, msg domain.RawMessage) (Result, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	body := msg.Body
	if len(body) > promptBodyLimit {
		body = body[:promptBodyLimit]
	}
	prompt := fmt.Sprintf(promptTemplate, msg.Subject, msg.Sender, body)

	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("model call: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return Result{}, errors.New("empty model response")
	}
	return parseModelReply(raw, msg)
}

type modelReply struct {
	EmailType  string  `json:"email_type"`
	Company    string  `json:"company"`
	Position   string  `json:"position"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}

// extractJSON finds the JSON payload in a free-text model reply: a fenced
// ```json block first, else the first top-level {...} span.
func extractJSON(raw string) (string, error) {
	if i := strings.Index(raw, "```json"); i >= 0 {
		rest := raw[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j]), nil
		}
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], nil
	}
	return "", errors.New("no JSON object in model response")
}

func parseModelReply(raw string, msg domain.RawMessage) (Result, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return Result{}, err
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return Result{}, fmt.Errorf("decode model JSON: %w", err)
	}

	confidence := reply.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	res := Result{
		Classification: domain.Classification{
			Category:   domain.CategoryFromString(reply.EmailType),
			Company:    strings.TrimSpace(reply.Company),
			Position:   strings.TrimSpace(reply.Position),
			Confidence: confidence,
			Notes:      reply.Notes,
		},
	}

	// Both fields are required to track anything; otherwise let the pattern
	// tier have a go.
	if res.Classification.Company == "" || res.Classification.Position == "" {
		return res, nil
	}

	emailDate := msg.Date
	res.Record = &domain.Application{
		Company:      res.Classification.Company,
		Position:     res.Classification.Position,
		DateApplied:  msg.Date,
		Status:       domain.StatusFromString(reply.Status),
		EmailDate:    &emailDate,
		Notes:        reply.Notes,
		EmailSubject: msg.Subject,
		EmailID:      msg.ID,
	}
	return res, nil
}
