package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
)

const geminiDefaultTimeout = 30 * time.Second

const defaultGeminiModel = "gemini-2.5-flash"

// systemInstruction pins the refiner's behavior: the title must survive
// verbatim as on-image text and the output is the prompt alone.
const systemInstruction = `You are an expert YouTube thumbnail designer.
Generate ONE clear, high-quality image generation prompt.

Rules:
- The thumbnail must be visually clear, bold, and click-worthy.
- Preserve the exact video title text and include it prominently as readable on-image text.
- Focus on a single strong visual concept with a clear foreground subject.
- Use concrete visual instructions (no abstract wording).
- Ensure high contrast and clean composition suitable for YouTube thumbnails.

Return ONLY the final image generation prompt. Do not add explanations.`

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiRefiner calls Gemini through its OpenAI-compatible chat-completions
// surface.
type GeminiRefiner struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewGeminiRefiner(opts GeminiOptions) (*GeminiRefiner, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiRefiner{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (g *GeminiRefiner) Refine(ctx context.Context, req Request) (string, error) {
	payload := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: buildUserTurn(req)},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrUpstreamFailure, err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", g.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrUpstreamFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: gemini status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamFailure, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrUpstreamFailure)
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty prompt returned", domain.ErrUpstreamFailure)
	}
	return text, nil
}

func buildUserTurn(req Request) string {
	overlay := "none"
	if req.TextOverlay {
		overlay = "yes"
	}
	return fmt.Sprintf(`Title: %s
Style: %s
Aspect Ratio: %s
Color Scheme: %s
Text Overlay: %s
Extra Instructions: %s

Return ONLY the final image prompt.`,
		req.Title,
		coalesce(string(req.Style), "modern"),
		coalesce(string(req.AspectRatio), "16:9"),
		coalesce(string(req.ColorScheme), "auto"),
		overlay,
		coalesce(req.UserPrompt, "none"),
	)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ Refiner = (*GeminiRefiner)(nil)
