// Package openaiad backs the oracle ports with OpenAI chat completions,
// for running the pipeline without a local model-serving sidecar.
package openaiad

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type Client struct {
	c     *openai.Client
	model string
}

func New(apiKey, model string) *Client {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{c: openai.NewClient(apiKey), model: model}
}

// ClassifySentiment asks for one of the pipeline's raw label names so the
// same label mapping works for both oracle backends.
func (c *Client) ClassifySentiment(ctx context.Context, text string) (string, error) {
	resp, err := c.c.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You classify the sentiment of location reviews. Reply with exactly one token: LABEL_2 for positive, LABEL_0 for negative, LABEL_1 for neutral.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: "Classify the sentiment of this review:\n\n" + text,
				},
			},
			MaxTokens:   5,
			N:           1,
			Temperature: 0,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) ExtractKeywords(ctx context.Context, text string, limit int) ([]string, error) {
	prompt := fmt.Sprintf("Extract at most %d short keyphrases (1-2 words each) that capture what this review is about. Reply with one keyphrase per line, nothing else:\n\n%s", limit, text)
	resp, err := c.c.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You extract keyphrases from location reviews.",
				},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   60,
			N:           1,
			Temperature: 0,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	var out []string
	for _, line := range strings.Split(resp.Choices[0].Message.Content, "\n") {
		kw := strings.TrimSpace(strings.TrimLeft(line, "-*•0123456789. "))
		if kw == "" {
			continue
		}
		out = append(out, strings.ToLower(kw))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (c *Client) Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	prompt := fmt.Sprintf("Summarize the following collection of reviews for one location. Focus on what visitors consistently praise or complain about. Keep the summary between %d and %d words:\n\n---\n%s\n---\n\nSummary:", minLen, maxLen, text)
	resp, err := c.c.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an assistant that summarizes location reviews concisely.",
				},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   maxLen + 50,
			N:           1,
			Temperature: 0.5,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
