package simplifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultChatURL  = "https://api.openai.com/v1/chat/completions"
	defaultImageURL = "https://api.openai.com/v1/images/generations"

	textModel  = "gpt-4.1-mini"
	imageModel = "gpt-image-1"
)

// Client calls the OpenAI API to turn raw lesson text into a calm,
// step-numbered version and to generate an illustration. Both calls are
// best-effort; callers degrade via the local fallback when they fail.
type Client struct {
	apiKey     string
	chatURL    string
	imageURL   string
	httpClient *http.Client
}

// NewClient creates a new OpenAI client. An empty API key yields a disabled
// client whose calls always fail over to the fallback.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		chatURL:    defaultChatURL,
		imageURL:   defaultImageURL,
		httpClient: http.DefaultClient,
	}
}

// Enabled reports whether remote generation is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Simplify turns a chapter or story into a gentle, step-numbered lesson.
// mode is "chapter" or "story" and only tunes the prompt.
func (c *Client) Simplify(ctx context.Context, original, mode string) (string, error) {
	if !c.Enabled() {
		return "", errors.New("content generation is not configured")
	}
	if strings.TrimSpace(original) == "" {
		return "", nil
	}

	styleHint := "chapter from school"
	if mode == "story" {
		styleHint = "short life story"
	}

	systemMsg := "You are an expert in creating calm, step-by-step learning material for children.\n" +
		"You always:\n" +
		"- Use very clear and simple language.\n" +
		"- Break content into short numbered steps.\n" +
		"- Make each step 1-3 short sentences.\n" +
		"- Keep the tone gentle, encouraging, and predictable.\n" +
		"- DO NOT mention autism, disorders, or special needs.\n"

	userMsg := fmt.Sprintf(
		"Turn the following %s into a numbered, step-by-step lesson.\n"+
			"Focus on clarity, predictability, and calm pacing.\n\nCONTENT:\n%s",
		styleHint, original,
	)

	request := chatRequest{
		Model: textModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemMsg},
			{Role: "user", Content: userMsg},
		},
		Temperature: 0.4,
	}

	var response chatResponse
	if err := c.post(ctx, c.chatURL, request, &response); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("no response choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// Illustrate generates a simple illustration for the lesson and returns it
// as a base64 payload
func (c *Client) Illustrate(ctx context.Context, title string) (string, error) {
	if !c.Enabled() {
		return "", errors.New("content generation is not configured")
	}

	prompt := fmt.Sprintf(
		"Create a simple, friendly, colorful illustration for a children's lesson titled '%s'. "+
			"The scene should be calm and easy to understand. Avoid text in the image. "+
			"The style should be soft and inviting.",
		title,
	)

	request := imageRequest{
		Model:  imageModel,
		Prompt: prompt,
		Size:   "1024x1024",
		N:      1,
	}

	var response imageResponse
	if err := c.post(ctx, c.imageURL, request, &response); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Data) == 0 {
		return "", errors.New("no image data returned")
	}

	return response.Data[0].B64JSON, nil
}

func (c *Client) post(ctx context.Context, url string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
