// Package classify turns extracted website text into a company profile
// with a single model call.
package classify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/competitor-intel/internal/apperr"
	"github.com/sells-group/competitor-intel/internal/llmjson"
	"github.com/sells-group/competitor-intel/internal/model"
	"github.com/sells-group/competitor-intel/pkg/anthropic"
)

// DefaultMaxTokens bounds the classifier reply.
const DefaultMaxTokens = 1500

const systemPrompt = `You are a business intelligence analyst. Analyze company websites and extract key information.

Analyze the website content and provide:
1. Company name
2. Industry/category (e.g., "e-commerce platform", "SaaS", "fintech", "gaming", "beauty", "fitness")
3. What the company does (detailed description)
4. Products/services offered
5. Target market

The industry/category is CRITICAL - it must be specific and accurate (e.g., "e-commerce platform", "project management SaaS", "fintech payment processing", "gaming hardware", "beauty subscription box").

Format your response as JSON with these keys:
{
  "company_name": "...",
  "industry": "...",
  "description": "...",
  "products_services": [...],
  "target_market": "..."
}`

const userPrompt = "Analyze this company website:\n\nURL: %s\n\nWebsite Content:\n%s"

// Classifier asks the model to describe a company from its website text.
type Classifier struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New creates a Classifier. maxTokens <= 0 uses DefaultMaxTokens.
func New(client anthropic.Client, model string, maxTokens int64) *Classifier {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Classifier{client: client, model: model, maxTokens: maxTokens}
}

// Classify returns the company profile for websiteURL given its page text.
func (c *Classifier) Classify(ctx context.Context, websiteURL, text string) (*model.CompanyProfile, error) {
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(userPrompt, websiteURL, text)},
		},
	})
	if err != nil {
		return nil, apperr.FromContext(ctx, apperr.KindUpstream, err, "Claude API error")
	}
	resp.Usage.LogCost(c.model, "classify")

	profile, err := llmjson.DecodeObject[model.CompanyProfile](resp.Text())
	if err != nil {
		zap.L().Warn("classify: unreadable model reply",
			zap.String("url", websiteURL),
			zap.String("stop_reason", resp.StopReason),
			zap.Error(err),
		)
		return nil, err
	}
	if profile.ProductsServices == nil {
		profile.ProductsServices = []string{}
	}
	return &profile, nil
}
