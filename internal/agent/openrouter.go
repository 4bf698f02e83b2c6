package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Attribution headers sent with every request. OpenRouter uses them for
// app rankings; other providers ignore them.
const (
	defaultReferer = "https://github.com/phoneclaw/phoneclaw"
	defaultTitle   = "PhoneClaw Agent"
)

// HTTPDoer abstracts HTTP clients used by providers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenRouterProvider implements Provider for any OpenAI-compatible
// chat-completions endpoint.
type OpenRouterProvider struct {
	APIKey  string
	BaseURL string
	Client  HTTPDoer
	Model   string
	Stream  bool
	Referer string
	Title   string
}

// NewOpenRouterProvider builds a provider from a settings snapshot. A missing
// API key is reported by Complete, before any request is made.
func NewOpenRouterProvider(settings Settings, client HTTPDoer) *OpenRouterProvider {
	settings = settings.Normalized()
	if client == nil {
		httpClient := &http.Client{}
		if settings.RequestTimeout > 0 {
			httpClient.Timeout = settings.RequestTimeout
		}
		client = httpClient
	}
	return &OpenRouterProvider{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Client:  client,
		Model:   settings.Model,
		Stream:  settings.Stream,
		Referer: defaultReferer,
		Title:   defaultTitle,
	}
}

// Complete sends the prompt and normalizes the answer. In streaming mode each
// content delta is passed to onChunk as it arrives.
func (p *OpenRouterProvider) Complete(ctx context.Context, prompt Prompt, onChunk ChunkHandler) (Response, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return Response{}, ErrMissingAPIKey
	}
	messages, err := buildOpenRouterMessages(prompt)
	if err != nil {
		return Response{}, err
	}
	requestBody := openRouterRequest{
		Model:    p.Model,
		Stream:   p.Stream,
		Messages: messages,
	}
	if len(prompt.Tools) > 0 {
		requestBody.Tools = buildOpenRouterTools(prompt.Tools)
		requestBody.ToolChoice = "auto"
	}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(p.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if p.Referer != "" {
		req.Header.Set("HTTP-Referer", p.Referer)
	}
	if p.Title != "" {
		req.Header.Set("X-Title", p.Title)
	}
	if p.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Response{}, newAPIError(resp.StatusCode, body)
	}
	if p.Stream {
		return parseOpenRouterStream(ctx, resp.Body, onChunk)
	}
	return parseOpenRouterResponse(resp.Body)
}

// parseOpenRouterResponse decodes a blocking completion.
func parseOpenRouterResponse(reader io.Reader) (Response, error) {
	var body openRouterResponse
	if err := json.NewDecoder(reader).Decode(&body); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if body.Error != nil {
		return Response{}, body.Error.asError()
	}
	if len(body.Choices) == 0 {
		return Response{}, ErrEmptyResponse
	}
	message := body.Choices[0].Message
	response := Response{}
	if message.Content != nil {
		response.Text = *message.Content
	}
	for _, call := range message.ToolCalls {
		id := call.ID
		if id == "" {
			id = syntheticCallID()
		}
		response.ToolCalls = append(response.ToolCalls, ToolCall{
			ID:        id,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return response, nil
}

// syntheticCallID names a tool call the provider sent without an id. The id
// is unique for the lifetime of the process, not just the response.
func syntheticCallID() string {
	return "call_" + uuid.NewString()
}
