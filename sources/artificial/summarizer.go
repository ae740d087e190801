package artificial

import (
	"context"
	"strings"

	"steinberg/sources/configuration"
	"steinberg/sources/platform"
	"steinberg/sources/tracing"

	"github.com/sashabaranov/go-openai"
)

type SummaryOutcome struct {
	Summary       string
	MessagesCount int
}

type Summarizer struct {
	ai     *openai.Client
	config *AIConfig
	yaml   *configuration.Config
}

func NewSummarizer(ai *openai.Client, config *AIConfig, yaml *configuration.Config) *Summarizer {
	return &Summarizer{ai: ai, config: config, yaml: yaml}
}

func (x *Summarizer) Summarize(ctx context.Context, log *tracing.Logger, messages []platform.WireMessage, locale string) (*SummaryOutcome, error) {
	prompt := x.prompt()

	request := openai.ChatCompletionRequest{
		Model: x.config.SummarizerModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: "Conversation à résumer:\n" + conversationText(messages)},
		},
		Temperature: x.config.SummarizerTemperature,
		MaxTokens:   x.config.SummarizerMaxTokens,
	}

	log.I("summary requested", tracing.AiKind, "openai/summarizer", tracing.AiModel, request.Model, tracing.MessageCount, len(messages), tracing.Locale, locale)

	response, err := x.ai.CreateChatCompletion(ctx, request)
	if err != nil {
		log.E("Failed to summarize conversation", tracing.InnerError, err)
		return nil, err
	}

	summary := strings.TrimSpace(response.Choices[0].Message.Content)

	log.I("summary completed", "summary_length", len(summary), tracing.AiTokens, response.Usage.TotalTokens)

	return &SummaryOutcome{Summary: summary, MessagesCount: len(messages)}, nil
}

func (x *Summarizer) prompt() string {
	if x.yaml.AI.Prompts.Summarization != "" {
		return x.yaml.AI.Prompts.Summarization
	}
	return DefaultSummaryPrompt
}

func conversationText(messages []platform.WireMessage) string {
	var b strings.Builder

	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}

		if msg.Role == platform.MessageRoleUser {
			b.WriteString("Utilisateur: ")
		} else {
			b.WriteString("Analyste: ")
		}
		b.WriteString(msg.Content)
	}

	return b.String()
}
