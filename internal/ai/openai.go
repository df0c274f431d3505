package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"contentpilot-backend/internal/domains/credential"
)

// OpenAIClient serves completions and image rendering through the OpenAI
// API. A client is constructed per call because the key varies by
// workspace.
type OpenAIClient struct{}

func NewOpenAIClient() *OpenAIClient {
	return &OpenAIClient{}
}

func (p *OpenAIClient) Name() credential.Provider {
	return credential.ProviderOpenAI
}

func (p *OpenAIClient) Complete(ctx context.Context, apiKey string, req CompletionRequest) (*CompletionResponse, error) {
	client := openai.NewClient(apiKey)

	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, p.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices")
	}

	return &CompletionResponse{
		Text:      resp.Choices[0].Message.Content,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}

// Render generates one image and returns the raw bytes.
func (p *OpenAIClient) Render(ctx context.Context, apiKey string, prompt string) (*Image, error) {
	client := openai.NewClient(apiKey)

	resp, err := client.CreateImage(ctx, openai.ImageRequest{
		Model:          imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, p.mapError(err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai: empty image response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai: decode image: %w", err)
	}

	return &Image{Bytes: data, ContentType: "image/png"}, nil
}

func (p *OpenAIClient) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden) {
		return fmt.Errorf("openai: %w: %v", ErrUnauthorized, err)
	}
	return fmt.Errorf("openai: %w", err)
}
