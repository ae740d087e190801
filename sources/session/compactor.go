package session

import (
	"context"
	"fmt"

	"steinberg/sources/configuration"
	"steinberg/sources/metrics"
	"steinberg/sources/platform"
	"steinberg/sources/repository"
	"steinberg/sources/tracing"
)

// The summary wrappers stay in French regardless of the visitor locale: the
// summarization prompt is French and treats them as structural markers.
const (
	priorSummaryFmt   = "Résumé précédent: %s"
	carriedSummaryFmt = "[Résumé de la conversation précédente: %s]"
)

// Compactor folds the older part of a long conversation into a rolling
// summary so the history payload stays bounded while context survives.
type Compactor struct {
	summarizer Summarizer
	metrics    *metrics.MetricsService
	config     *configuration.Config
}

func NewCompactor(summarizer Summarizer, metrics *metrics.MetricsService, config *configuration.Config) *Compactor {
	return &Compactor{summarizer: summarizer, metrics: metrics, config: config}
}

// ShouldCompact is evaluated before the new user turn is appended.
func (x *Compactor) ShouldCompact(conversation *repository.Conversation) bool {
	total := len(conversation.Messages)
	unsummarized := total - conversation.SummarizedUpTo
	return unsummarized > x.config.Compaction.Threshold && total > x.config.Compaction.Threshold
}

// Compact summarizes everything between the watermark and the recent tail.
// On success the summary and watermark advance; any failure leaves the
// conversation untouched and the send proceeds with the longer history.
func (x *Compactor) Compact(ctx context.Context, logger *tracing.Logger, conversation *repository.Conversation, locale string) {
	total := len(conversation.Messages)
	end := total - x.config.Compaction.KeepRecent
	if end <= conversation.SummarizedUpTo {
		return
	}

	aged := conversation.Messages[conversation.SummarizedUpTo:end]

	payload := make([]platform.WireMessage, 0, len(aged)+1)
	if conversation.Summary != "" {
		payload = append(payload, platform.WireMessage{
			Role:    platform.MessageRoleSystem,
			Content: fmt.Sprintf(priorSummaryFmt, conversation.Summary),
		})
	}
	for _, m := range aged {
		payload = append(payload, platform.WireMessage{Role: m.Role, Content: m.Content})
	}

	result, err := x.summarizer.Summarize(ctx, logger, payload, locale)
	if err != nil || result == nil || result.Summary == "" {
		logger.W("conversation_compaction_failed", tracing.InnerError, err, tracing.ConversationId, conversation.ID, tracing.MessageCount, len(aged))
		x.metrics.RecordCompaction("failed")
		return
	}

	conversation.Summary = result.Summary
	conversation.SummarizedUpTo = end

	logger.I("conversation_compacted", tracing.ConversationId, conversation.ID, tracing.SummaryUpTo, end, tracing.MessageCount, len(aged))
	x.metrics.RecordCompaction("ok")
}

// HistoryPayload builds the outbound history: the carried summary as a
// synthetic leading turn, then everything from the watermark on, hard-capped
// to the most recent entries.
func (x *Compactor) HistoryPayload(conversation *repository.Conversation) []platform.WireMessage {
	start := conversation.SummarizedUpTo
	if start < 0 {
		start = 0
	}
	if start > len(conversation.Messages) {
		start = len(conversation.Messages)
	}

	recent := conversation.Messages[start:]

	history := make([]platform.WireMessage, 0, len(recent)+1)
	if conversation.Summary != "" {
		history = append(history, platform.WireMessage{
			Role:    platform.MessageRoleSystem,
			Content: fmt.Sprintf(carriedSummaryFmt, conversation.Summary),
		})
	}
	for _, m := range recent {
		history = append(history, platform.WireMessage{Role: m.Role, Content: m.Content})
	}

	if len(history) > x.config.Compaction.HistoryCap {
		history = history[len(history)-x.config.Compaction.HistoryCap:]
	}
	return history
}
