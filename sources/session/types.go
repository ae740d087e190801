package session

import (
	"context"

	"steinberg/sources/platform"
	"steinberg/sources/repository"
	"steinberg/sources/tracing"
)

// WelcomeMessageID marks the seeded greeting. A conversation that still
// contains only this message is never persisted.
const WelcomeMessageID = "welcome"

type ChatFile struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name"`
}

type ChatRequest struct {
	Message string                 `json:"message"`
	Files   []ChatFile             `json:"files,omitempty"`
	Locale  string                 `json:"locale"`
	History []platform.WireMessage `json:"history,omitempty"`
	Stream  bool                   `json:"stream"`
}

type ChatResponse struct {
	Response   string `json:"response"`
	TokensUsed int    `json:"tokensUsed"`
}

type SummaryResult struct {
	Summary       string `json:"summary"`
	MessagesCount int    `json:"messagesCount"`
}

type QuotaStore interface {
	Status(logger *tracing.Logger, session string) *repository.QuotaStatus
	Charge(logger *tracing.Logger, session string)
}

type ConversationStore interface {
	Get(logger *tracing.Logger, session string, id string) (*repository.Conversation, error)
	Save(logger *tracing.Logger, session string, conversation *repository.Conversation) error
	Active(logger *tracing.Logger, session string) (string, error)
	SetActive(logger *tracing.Logger, session string, id string) error
	ClearActive(logger *tracing.Logger, session string) error
}

type ChatService interface {
	StreamMessage(ctx context.Context, logger *tracing.Logger, request *ChatRequest, consumer *StreamConsumer) error
	SendMessage(ctx context.Context, logger *tracing.Logger, request *ChatRequest) (*ChatResponse, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, logger *tracing.Logger, messages []platform.WireMessage, locale string) (*SummaryResult, error)
}

// Guard serializes sends per session. TryAcquire returns false while another
// send is in flight.
type Guard interface {
	TryAcquire(logger *tracing.Logger, session string) bool
	Release(logger *tracing.Logger, session string)
}

type Localizer interface {
	Welcome(locale string) string
	AnalysisError(locale string) string
}

type FeatureGate interface {
	IsEnabledOrDefault(name string, defaultValue bool) bool
}
