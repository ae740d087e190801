package artificial

import (
	"fmt"
	"strings"

	"steinberg/sources/platform"

	openrouter "github.com/revrost/go-openrouter"
	"github.com/sashabaranov/go-openai"
)

func WireStackToOpenRouter(history []platform.WireMessage) []openrouter.ChatCompletionMessage {
	var messages []openrouter.ChatCompletionMessage

	for _, msg := range history {
		if msg.Content == "" {
			continue
		}

		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    wireRole(msg.Role),
			Content: openrouter.Content{Text: msg.Content},
		})
	}

	return messages
}

func WireStackToOpenAI(history []platform.WireMessage) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage

	for _, msg := range history {
		if msg.Content == "" {
			continue
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:    wireRole(msg.Role),
			Content: msg.Content,
		})
	}

	return messages
}

func wireRole(role platform.MessageRole) string {
	switch role {
	case platform.MessageRoleAssistant:
		return openai.ChatMessageRoleAssistant
	case platform.MessageRoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}

// DataURL returns the file payload as a data URL, widget uploads may arrive
// either as bare base64 or with the prefix already applied.
func DataURL(data string, mimeType string) string {
	if strings.HasPrefix(data, "data:") {
		return data
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, data)
}
