package artificial

import (
	"context"
	"errors"
	"io"
	"net/http"

	"steinberg/sources/balancer"
	"steinberg/sources/tracing"

	openrouter "github.com/revrost/go-openrouter"
	"github.com/shopspring/decimal"
)

func NewOpenRouterClient(config *AIConfig, client *http.Client) *openrouter.Client {
	clientConfig := openrouter.DefaultConfig(config.OpenRouterToken)
	clientConfig.HTTPClient = client
	clientConfig.XTitle = "Steinberg Hospitality Analytics"
	clientConfig.HttpReferer = "https://steinberg-analytics.com"

	return openrouter.NewClientWithConfig(*clientConfig)
}

type OpenRouterProvider struct {
	ai     *openrouter.Client
	config *AIConfig
}

func NewOpenRouterProvider(ai *openrouter.Client, config *AIConfig) *OpenRouterProvider {
	return &OpenRouterProvider{ai: ai, config: config}
}

func (x *OpenRouterProvider) Respond(ctx context.Context, log *tracing.Logger, prompt string, exchange *balancer.Exchange) (*balancer.Result, error) {
	request := x.request(prompt, exchange)

	log.I("ai action requested", tracing.AiKind, "openrouter", tracing.AiModel, request.Model, tracing.MessageCount, len(request.Messages))

	response, err := x.ai.CreateChatCompletion(ctx, request)
	if err != nil {
		var apiErr *openrouter.APIError
		if errors.As(err, &apiErr) {
			log.E("OpenRouter API error", "code", apiErr.Code, "message", apiErr.Message, "http_status", apiErr.HTTPStatusCode, tracing.InnerError, err)
		}
		return nil, err
	}

	result := &balancer.Result{
		Text:   response.Choices[0].Message.Content.Text,
		Tokens: response.Usage.TotalTokens,
		Cost:   decimal.NewFromFloat(response.Usage.Cost),
		Model:  request.Model,
	}

	log.I("ai completed", tracing.AiKind, "openrouter", tracing.AiTokens, result.Tokens, tracing.AiCost, result.Cost.String())
	return result, nil
}

func (x *OpenRouterProvider) RespondStream(ctx context.Context, log *tracing.Logger, prompt string, exchange *balancer.Exchange, emit func(delta string)) (*balancer.Result, error) {
	request := x.request(prompt, exchange)
	request.Stream = true

	log.I("ai stream requested", tracing.AiKind, "openrouter", tracing.AiModel, request.Model, tracing.MessageCount, len(request.Messages))

	stream, err := x.ai.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	result := &balancer.Result{Model: request.Model}
	var text []byte

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if response.Usage != nil {
			result.Tokens = response.Usage.TotalTokens
			result.Cost = decimal.NewFromFloat(response.Usage.Cost)
		}

		if len(response.Choices) == 0 {
			continue
		}

		delta := response.Choices[0].Delta.Content
		if delta != "" {
			text = append(text, delta...)
			emit(delta)
		}
	}

	result.Text = string(text)

	log.I("ai stream completed", tracing.AiKind, "openrouter", tracing.AiTokens, result.Tokens, tracing.AiCost, result.Cost.String())
	return result, nil
}

func (x *OpenRouterProvider) request(prompt string, exchange *balancer.Exchange) openrouter.ChatCompletionRequest {
	messages := []openrouter.ChatCompletionMessage{
		{Role: openrouter.ChatMessageRoleSystem, Content: openrouter.Content{Text: prompt}},
	}

	messages = append(messages, WireStackToOpenRouter(exchange.History)...)

	text := languageInstruction(exchange.Locale) + "\n\n" + exchange.Message

	if len(exchange.Files) == 0 {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleUser,
			Content: openrouter.Content{Text: text},
		})
	} else {
		parts := []openrouter.ChatMessagePart{
			{Type: openrouter.ChatMessagePartTypeText, Text: text},
		}

		for _, file := range exchange.Files {
			parts = append(parts, openrouter.ChatMessagePart{
				Type:     openrouter.ChatMessagePartTypeImageURL,
				ImageURL: &openrouter.ChatMessageImageURL{URL: DataURL(file.Data, file.MimeType), Detail: openrouter.ImageURLDetailAuto},
			})
		}

		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleUser,
			Content: openrouter.Content{Multi: parts},
		})
	}

	return openrouter.ChatCompletionRequest{
		Model:       x.config.AdvisorPrimaryModel,
		Models:      x.config.AdvisorFallbackModels,
		Messages:    messages,
		Temperature: x.config.AdvisorTemperature,
		TopP:        x.config.AdvisorTopP,
		MaxTokens:   x.config.AdvisorMaxTokens,
		Usage:       &openrouter.IncludeUsage{Include: true},
	}
}
