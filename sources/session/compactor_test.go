package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"steinberg/sources/configuration"
	"steinberg/sources/metrics"
	"steinberg/sources/platform"
	"steinberg/sources/repository"
	"steinberg/sources/tracing"
)

func testMetrics() *metrics.MetricsService {
	return metrics.NewMetricsService(tracing.NewConsoleLogger())
}

type fakeSummarizer struct {
	result   *SummaryResult
	err      error
	received []platform.WireMessage
	calls    int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, logger *tracing.Logger, messages []platform.WireMessage, locale string) (*SummaryResult, error) {
	f.calls++
	f.received = messages
	return f.result, f.err
}

func compactionConfig() *configuration.Config {
	return &configuration.Config{
		Compaction: configuration.CompactionConfig{Threshold: 12, KeepRecent: 6, HistoryCap: 12},
	}
}

func messagesOf(n int) []repository.Message {
	messages := make([]repository.Message, 0, n)
	for i := 0; i < n; i++ {
		role := platform.MessageRoleUser
		if i%2 == 1 {
			role = platform.MessageRoleAssistant
		}
		messages = append(messages, repository.Message{
			ID:        fmt.Sprintf("m%d", i),
			Role:      role,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: time.Now(),
		})
	}
	return messages
}

func TestShouldCompact(t *testing.T) {
	compactor := NewCompactor(&fakeSummarizer{}, testMetrics(), compactionConfig())

	tests := []struct {
		name           string
		total          int
		summarizedUpTo int
		expected       bool
	}{
		{name: "Short conversation", total: 5, summarizedUpTo: 0, expected: false},
		{name: "Exactly at threshold", total: 12, summarizedUpTo: 0, expected: false},
		{name: "Just above threshold", total: 13, summarizedUpTo: 0, expected: true},
		{name: "Long but mostly summarized", total: 20, summarizedUpTo: 10, expected: false},
		{name: "Long with stale watermark", total: 30, summarizedUpTo: 10, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conversation := &repository.Conversation{Messages: messagesOf(tt.total), SummarizedUpTo: tt.summarizedUpTo}
			if got := compactor.ShouldCompact(conversation); got != tt.expected {
				t.Errorf("ShouldCompact(total=%d, upTo=%d) = %v, expected %v", tt.total, tt.summarizedUpTo, got, tt.expected)
			}
		})
	}
}

func TestCompactAdvancesWatermark(t *testing.T) {
	log := tracing.NewConsoleLogger()
	summarizer := &fakeSummarizer{result: &SummaryResult{Summary: "the gist", MessagesCount: 9}}
	compactor := NewCompactor(summarizer, testMetrics(), compactionConfig())

	conversation := &repository.Conversation{Messages: messagesOf(15)}
	compactor.Compact(context.Background(), log, conversation, "en")

	if conversation.Summary != "the gist" {
		t.Errorf("Summary = %q, expected %q", conversation.Summary, "the gist")
	}
	if conversation.SummarizedUpTo != 9 {
		t.Errorf("SummarizedUpTo = %d, expected 9", conversation.SummarizedUpTo)
	}
	if len(summarizer.received) != 9 {
		t.Fatalf("summarizer received %d messages, expected 9", len(summarizer.received))
	}
	if summarizer.received[0].Content != "message 0" || summarizer.received[8].Content != "message 8" {
		t.Errorf("summarizer received wrong slice: first %q last %q", summarizer.received[0].Content, summarizer.received[8].Content)
	}
	if len(conversation.Messages) != 15 {
		t.Errorf("messages len = %d, compaction must not drop messages", len(conversation.Messages))
	}
}

func TestCompactPrependsPriorSummary(t *testing.T) {
	log := tracing.NewConsoleLogger()
	summarizer := &fakeSummarizer{result: &SummaryResult{Summary: "newer gist"}}
	compactor := NewCompactor(summarizer, testMetrics(), compactionConfig())

	conversation := &repository.Conversation{
		Messages:       messagesOf(25),
		Summary:        "older gist",
		SummarizedUpTo: 5,
	}
	compactor.Compact(context.Background(), log, conversation, "fr")

	if len(summarizer.received) != 15 {
		t.Fatalf("summarizer received %d entries, expected 14 messages plus the carried summary", len(summarizer.received))
	}
	lead := summarizer.received[0]
	if lead.Role != platform.MessageRoleSystem || !strings.Contains(lead.Content, "older gist") {
		t.Errorf("leading entry = %s/%q, expected synthetic system turn carrying the prior summary", lead.Role, lead.Content)
	}
	if conversation.SummarizedUpTo != 19 {
		t.Errorf("SummarizedUpTo = %d, expected 19", conversation.SummarizedUpTo)
	}
}

func TestCompactFailureLeavesStateUntouched(t *testing.T) {
	log := tracing.NewConsoleLogger()
	summarizer := &fakeSummarizer{err: errors.New("summarizer down")}
	compactor := NewCompactor(summarizer, testMetrics(), compactionConfig())

	conversation := &repository.Conversation{Messages: messagesOf(15), Summary: "kept", SummarizedUpTo: 1}
	compactor.Compact(context.Background(), log, conversation, "en")

	if conversation.Summary != "kept" {
		t.Errorf("Summary = %q, expected unchanged %q", conversation.Summary, "kept")
	}
	if conversation.SummarizedUpTo != 1 {
		t.Errorf("SummarizedUpTo = %d, expected unchanged 1", conversation.SummarizedUpTo)
	}
}

func TestHistoryPayload(t *testing.T) {
	compactor := NewCompactor(&fakeSummarizer{}, testMetrics(), compactionConfig())

	t.Run("No summary sends everything under the cap", func(t *testing.T) {
		conversation := &repository.Conversation{Messages: messagesOf(5)}
		history := compactor.HistoryPayload(conversation)
		if len(history) != 5 {
			t.Fatalf("history len = %d, expected 5", len(history))
		}
		if history[0].Content != "message 0" {
			t.Errorf("history[0] = %q, expected %q", history[0].Content, "message 0")
		}
	})

	t.Run("Summary leads and watermark skips the compacted part", func(t *testing.T) {
		conversation := &repository.Conversation{Messages: messagesOf(15), Summary: "gist", SummarizedUpTo: 9}
		history := compactor.HistoryPayload(conversation)
		if len(history) != 7 {
			t.Fatalf("history len = %d, expected 7", len(history))
		}
		if history[0].Role != platform.MessageRoleSystem || !strings.Contains(history[0].Content, "gist") {
			t.Errorf("history[0] = %s/%q, expected leading summary turn", history[0].Role, history[0].Content)
		}
		if history[1].Content != "message 9" {
			t.Errorf("history[1] = %q, expected %q", history[1].Content, "message 9")
		}
	})

	t.Run("Hard cap keeps only the most recent entries", func(t *testing.T) {
		conversation := &repository.Conversation{Messages: messagesOf(30), Summary: "gist", SummarizedUpTo: 10}
		history := compactor.HistoryPayload(conversation)
		if len(history) != 12 {
			t.Fatalf("history len = %d, expected 12", len(history))
		}
		if history[len(history)-1].Content != "message 29" {
			t.Errorf("last entry = %q, expected %q", history[len(history)-1].Content, "message 29")
		}
		for _, m := range history {
			if m.Role == platform.MessageRoleSystem {
				t.Errorf("summary turn survived the cap, expected it cut with the oldest entries")
			}
		}
	})
}
