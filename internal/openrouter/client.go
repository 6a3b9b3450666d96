package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	OpenRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"
)

var ErrEmptyCompletion = errors.New("no content returned by model")

type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	model      *string // nil uses the OpenRouter account default
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: OpenRouterAPIURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// SetModel pins a specific model instead of the account default.
func (c *Client) SetModel(model string) {
	if model == "" {
		return
	}
	c.model = &model
}

// GenerationRequest describes the post the user asked for.
type GenerationRequest struct {
	Prompt          string
	Tone            string
	Length          string
	IncludeHashtags bool
}

// GeneratedPost is the cleaned model output.
type GeneratedPost struct {
	Content  string
	Hashtags string
}

var lengthGuides = map[string]string{
	"short":  "Keep it under 100 words.",
	"medium": "Aim for 150 to 250 words.",
	"long":   "Write 300 to 500 words with short paragraphs.",
}

// Generate asks the model for a LinkedIn post and returns its content with
// any trailing hashtag line split out.
func (c *Client) Generate(ctx context.Context, gr GenerationRequest) (*GeneratedPost, error) {
	if strings.TrimSpace(gr.Prompt) == "" {
		return nil, errors.New("prompt cannot be empty")
	}

	reqBody := map[string]interface{}{
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": "You write LinkedIn posts. Reply with the post text only, no preamble and no markdown.",
			},
			{
				"role":    "user",
				"content": c.buildPrompt(gr),
			},
		},
	}
	if c.model != nil {
		reqBody["model"] = *c.model
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	content := c.cleanContent(apiResp.Choices[0].Message.Content)
	if content == "" {
		return nil, ErrEmptyCompletion
	}

	post := &GeneratedPost{Content: content}
	if gr.IncludeHashtags {
		post.Content, post.Hashtags = splitHashtags(content)
	}

	return post, nil
}

func (c *Client) buildPrompt(gr GenerationRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a LinkedIn post about: %s\n", strings.TrimSpace(gr.Prompt))

	tone := gr.Tone
	if tone == "" {
		tone = "professional"
	}
	fmt.Fprintf(&b, "Tone: %s.\n", tone)

	if guide, ok := lengthGuides[gr.Length]; ok {
		b.WriteString(guide + "\n")
	}

	if gr.IncludeHashtags {
		b.WriteString("End with a single line of 3 to 5 relevant hashtags.\n")
	} else {
		b.WriteString("Do not include hashtags.\n")
	}

	return b.String()
}

// cleanContent strips code fences and wrapping quotes some models add.
func (c *Client) cleanContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if i := strings.Index(content, "\n"); i >= 0 {
			content = content[i+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	if len(content) >= 2 && content[0] == '"' && content[len(content)-1] == '"' {
		content = strings.TrimSpace(content[1 : len(content)-1])
	}

	return content
}

// splitHashtags separates a trailing line made only of hashtags.
func splitHashtags(content string) (string, string) {
	lines := strings.Split(content, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" || len(lines) == 1 {
		return content, ""
	}

	for _, word := range strings.Fields(last) {
		if !strings.HasPrefix(word, "#") {
			return content, ""
		}
	}

	body := strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
	return body, last
}
