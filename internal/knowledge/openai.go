package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"pocket-pulse/internal/domain"
)

const (
	// The distillation prompt only ever sees the head of the document; the
	// interesting strategy material sits up front in practice.
	maxPromptChars = 4000
	maxConcepts    = 5

	systemPrompt = "You are a trading-education analyst. You extract key trading " +
		"concepts from documents and return them as strict JSON."

	userPromptTemplate = "Analyze the following text from a trading document. Extract up to %d key " +
		"trading concepts. Respond with a JSON object of the form " +
		`{"concepts":[{"category":"...","content":"...","summary":"...","relevance":0.0}]}` +
		" where category is one of Strategy, Indicator, Risk or Psychology, summary is at most " +
		"20 words and relevance is in [0,1].\n\nTEXT:\n%s"
)

type conceptPayload struct {
	Concepts []struct {
		Category  string  `json:"category"`
		Content   string  `json:"content"`
		Summary   string  `json:"summary"`
		Relevance float64 `json:"relevance"`
	} `json:"concepts"`
}

// OpenAIExtractor distills trading concepts from raw document text using a
// chat completion.
type OpenAIExtractor struct {
	client openai.Client
	model  string
}

func NewOpenAIExtractor(apiKey, model string) *OpenAIExtractor {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIExtractor{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (e *OpenAIExtractor) ExtractConcepts(ctx context.Context, text string) ([]domain.Knowledge, error) {
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf(userPromptTemplate, maxConcepts, text)),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("concept extraction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("concept extraction: empty completion")
	}

	return parseConcepts(resp.Choices[0].Message.Content)
}

// parseConcepts decodes the model's JSON reply, tolerating markdown code
// fences around the object.
func parseConcepts(reply string) ([]domain.Knowledge, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var payload conceptPayload
	if err := json.Unmarshal([]byte(reply), &payload); err != nil {
		return nil, fmt.Errorf("concept extraction: unparsable reply: %w", err)
	}

	concepts := make([]domain.Knowledge, 0, len(payload.Concepts))
	for _, c := range payload.Concepts {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		score := c.Relevance
		if score <= 0 || score > 1 {
			score = 0.5
		}
		category := c.Category
		if category == "" {
			category = "Strategy"
		}
		concepts = append(concepts, domain.Knowledge{
			Category:       category,
			Content:        c.Content,
			Summary:        c.Summary,
			RelevanceScore: score,
		})
		if len(concepts) == maxConcepts {
			break
		}
	}
	return concepts, nil
}
