package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nfc18/contactplus/internal/model"
	"github.com/nfc18/contactplus/internal/resilience"
)

const suggestSystemPrompt = `You reconstruct a person's proper name from contact data where the display name was filled from an email address. Respond with JSON only: {"name": "First Last", "confidence": 0.0-1.0}. Use an empty name when no plausible reconstruction exists.`

// AnthropicSuggester asks a Claude model to reconstruct a "First Last" name
// from the record's email local parts and name fragments. Calls are rate
// limited and retried on transient errors. A circuit breaker stops calls
// once the API fails repeatedly so a big run degrades instead of stalling.
type AnthropicSuggester struct {
	client  sdk.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewAnthropicSuggester creates a suggester backed by the Anthropic API.
// callsPerSecond bounds the request rate across the whole annotate phase.
func NewAnthropicSuggester(apiKey, modelName string, timeout time.Duration, callsPerSecond float64) *AnthropicSuggester {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if callsPerSecond <= 0 {
		callsPerSecond = 2
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "suggest")
	return &AnthropicSuggester{
		client:  sdk.NewClient(option.WithAPIKey(apiKey)),
		model:   modelName,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(callsPerSecond), 1),
		retry:   retry,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
	}
}

// Suggest implements Suggester. Errors are returned for logging but callers
// treat them as "no suggestion"; a failed or slow scorer never fails a run.
func (s *AnthropicSuggester) Suggest(ctx context.Context, rec *model.SourceRecord) (*Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "suggest: rate limit wait")
	}

	prompt := buildPrompt(rec)
	msg, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (*sdk.Message, error) {
		return resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*sdk.Message, error) {
			m, err := s.client.Messages.New(ctx, sdk.MessageNewParams{
				Model:     sdk.Model(s.model),
				MaxTokens: 128,
				System:    []sdk.TextBlockParam{{Text: suggestSystemPrompt}},
				Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
			})
			return m, classifyAPIError(err)
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "suggest: create message")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	sug, err := parseSuggestion(text)
	if err != nil {
		zap.L().Debug("suggest: unusable response",
			zap.String("record", rec.Ref().String()),
			zap.Error(err),
		)
		return nil, nil
	}
	return sug, nil
}

// classifyAPIError marks retryable API failures (rate limits, upstream
// outages) as transient so the retry wrapper acts on them. Everything else
// passes through untouched.
func classifyAPIError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
		return resilience.NewTransientError(err, apiErr.StatusCode)
	}
	return err
}

// buildPrompt lays out the identity evidence available on the record.
func buildPrompt(rec *model.SourceRecord) string {
	var b strings.Builder
	b.WriteString("Display name: " + rec.DisplayName + "\n")
	if !rec.Name.IsZero() {
		b.WriteString("Structured name: given=" + rec.Name.Given + " family=" + rec.Name.Family + "\n")
	}
	for _, e := range rec.Emails {
		b.WriteString("Email: " + e.Address + "\n")
	}
	if rec.Organization != "" {
		b.WriteString("Organization: " + rec.Organization + "\n")
	}
	return b.String()
}

// parseSuggestion extracts the JSON object from the response text, tolerating
// surrounding prose or code fences.
func parseSuggestion(text string) (*Suggestion, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.New("suggest: no JSON object in response")
	}
	var payload struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, eris.Wrap(err, "suggest: parse response")
	}
	if strings.TrimSpace(payload.Name) == "" {
		return nil, nil
	}
	return &Suggestion{Name: strings.TrimSpace(payload.Name), Confidence: payload.Confidence}, nil
}
