package artificial

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"steinberg/sources/balancer"
	"steinberg/sources/tracing"

	"github.com/sashabaranov/go-openai"
)

func NewOpenAIClient(client *http.Client, config *AIConfig) *openai.Client {
	openaiConfig := openai.DefaultConfig(config.OpenAIToken)
	openaiConfig.HTTPClient = client
	return openai.NewClientWithConfig(openaiConfig)
}

type OpenAIProvider struct {
	ai     *openai.Client
	config *AIConfig
}

func NewOpenAIProvider(ai *openai.Client, config *AIConfig) *OpenAIProvider {
	return &OpenAIProvider{ai: ai, config: config}
}

func (x *OpenAIProvider) Respond(ctx context.Context, log *tracing.Logger, prompt string, exchange *balancer.Exchange) (*balancer.Result, error) {
	request := x.request(prompt, exchange)

	log.I("ai action requested", tracing.AiKind, "openai", tracing.AiModel, request.Model, tracing.MessageCount, len(request.Messages))

	response, err := x.ai.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, err
	}

	result := &balancer.Result{
		Text:   response.Choices[0].Message.Content,
		Tokens: response.Usage.TotalTokens,
		Model:  request.Model,
	}

	log.I("ai completed", tracing.AiKind, "openai", tracing.AiTokens, result.Tokens)
	return result, nil
}

func (x *OpenAIProvider) RespondStream(ctx context.Context, log *tracing.Logger, prompt string, exchange *balancer.Exchange, emit func(delta string)) (*balancer.Result, error) {
	request := x.request(prompt, exchange)
	request.Stream = true
	request.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	log.I("ai stream requested", tracing.AiKind, "openai", tracing.AiModel, request.Model, tracing.MessageCount, len(request.Messages))

	stream, err := x.ai.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	result := &balancer.Result{Model: request.Model}
	var text strings.Builder

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
		}

		if len(response.Choices) == 0 {
			continue
		}

		delta := response.Choices[0].Delta.Content
		if delta != "" {
			text.WriteString(delta)
			emit(delta)
		}
	}

	result.Text = text.String()

	log.I("ai stream completed", tracing.AiKind, "openai", tracing.AiTokens, result.Tokens)
	return result, nil
}

func (x *OpenAIProvider) request(prompt string, exchange *balancer.Exchange) openai.ChatCompletionRequest {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt},
	}

	messages = append(messages, WireStackToOpenAI(exchange.History)...)

	text := languageInstruction(exchange.Locale) + "\n\n" + exchange.Message

	if len(exchange.Files) == 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: text,
		})
	} else {
		parts := []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: text},
		}

		for _, file := range exchange.Files {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: DataURL(file.Data, file.MimeType), Detail: openai.ImageURLDetailAuto},
			})
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       x.config.OpenAIAdvisorModel,
		Messages:    messages,
		Temperature: x.config.AdvisorTemperature,
		TopP:        x.config.AdvisorTopP,
		MaxTokens:   x.config.AdvisorMaxTokens,
	}
}
