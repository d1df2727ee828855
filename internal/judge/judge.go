// Package judge submits a business query (with or without search
// results) to an LLM and parses its structured verdict. Every failure
// mode collapses into ErrUnavailable so callers fall back to the
// rule-based ranker as a normal control-flow branch.
package judge

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/config"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/pkg/anthropic"
)

// ErrUnavailable signals that no usable verdict was produced. It is a
// first-class outcome: callers branch on it and use the rule-based
// result, never surfacing it as a row failure.
var ErrUnavailable = eris.New("judge: unavailable")

// Verdict is a validated agent judgment for one business query.
type Verdict struct {
	URL        string
	Type       model.Category
	Confidence float64
	Reasoning  string
}

// Judge evaluates candidates (or searches for them) on behalf of one
// business query.
type Judge interface {
	// Judge picks the best URL from the given search results.
	Judge(ctx context.Context, q model.BusinessQuery, results []model.RawResult) (*Verdict, error)
	// SearchAndJudge lets the agent search the web itself.
	SearchAndJudge(ctx context.Context, q model.BusinessQuery) (*Verdict, error)
}

// anthropicJudge implements Judge on the Anthropic Messages API.
type anthropicJudge struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
}

// New creates a Judge backed by the given Anthropic client.
func New(client anthropic.Client, cfg config.AnthropicConfig) Judge {
	return &anthropicJudge{client: client, cfg: cfg}
}

func (j *anthropicJudge) Judge(ctx context.Context, q model.BusinessQuery, results []model.RawResult) (*Verdict, error) {
	if len(results) == 0 {
		return nil, ErrUnavailable
	}
	return j.complete(ctx, q, anthropic.MessageRequest{
		Model:     j.cfg.Model,
		MaxTokens: j.cfg.MaxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: rerankPrompt(q, results)},
		},
		Temperature: lowTemperature(),
	})
}

func (j *anthropicJudge) SearchAndJudge(ctx context.Context, q model.BusinessQuery) (*Verdict, error) {
	return j.complete(ctx, q, anthropic.MessageRequest{
		Model:     j.cfg.Model,
		MaxTokens: j.cfg.MaxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: agentPrompt(q)},
		},
		Temperature:    lowTemperature(),
		WebSearch:      true,
		MaxWebSearches: 5,
	})
}

func (j *anthropicJudge) complete(ctx context.Context, q model.BusinessQuery, req anthropic.MessageRequest) (*Verdict, error) {
	resp, err := j.client.CreateMessage(ctx, req)
	if err != nil {
		zap.L().Warn("judge: message request failed, falling back to rules",
			zap.String("business", q.Name),
			zap.Error(err),
		)
		return nil, ErrUnavailable
	}

	verdict, err := ParseVerdict(resp.Text())
	if err != nil {
		zap.L().Warn("judge: unusable verdict, falling back to rules",
			zap.String("business", q.Name),
			zap.Error(err),
		)
		return nil, ErrUnavailable
	}

	zap.L().Debug("judge: verdict accepted",
		zap.String("business", q.Name),
		zap.String("url", verdict.URL),
		zap.Float64("confidence", verdict.Confidence),
	)
	return verdict, nil
}

func lowTemperature() *float64 {
	t := 0.1
	return &t
}
