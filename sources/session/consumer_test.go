package session

import (
	"testing"
)

func feedAll(c *StreamConsumer, chunks ...string) {
	for _, chunk := range chunks {
		c.Feed([]byte(chunk))
	}
	c.Flush()
}

func TestStreamConsumerReassemblesSplitChunks(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []string
		expected string
	}{
		{
			name:     "Single complete frame",
			chunks:   []string{"data: {\"text\":\"Hello\"}\n"},
			expected: "Hello",
		},
		{
			name:     "Frame split mid JSON",
			chunks:   []string{"data: {\"te", "xt\":\"Hello\"}\n"},
			expected: "Hello",
		},
		{
			name:     "Frame split inside prefix",
			chunks:   []string{"da", "ta: {\"text\":\"Hi\"}\ndata: {\"text\":\" there\"}\n"},
			expected: "Hi there",
		},
		{
			name:     "Multiple frames in one chunk",
			chunks:   []string{"data: {\"text\":\"a\"}\ndata: {\"text\":\"b\"}\ndata: {\"text\":\"c\"}\n"},
			expected: "abc",
		},
		{
			name:     "Done sentinel stops nothing but marks completion",
			chunks:   []string{"data: {\"text\":\"done soon\"}\ndata: [DONE]\n"},
			expected: "done soon",
		},
		{
			name:     "Trailing frame without newline recovered by flush",
			chunks:   []string{"data: {\"text\":\"partial\"}"},
			expected: "partial",
		},
		{
			name:     "Malformed frames skipped silently",
			chunks:   []string{"data: not-json\ndata: {\"text\":\"ok\"}\n: heartbeat\n\n"},
			expected: "ok",
		},
		{
			name:     "Non data lines ignored",
			chunks:   []string{"event: ping\ndata: {\"text\":\"x\"}\n"},
			expected: "x",
		},
		{
			name:     "Typographic punctuation normalized",
			chunks:   []string{"data: {\"text\":\"It’s “fine”\"}\n"},
			expected: "It's \"fine\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer := NewStreamConsumer(nil)
			feedAll(consumer, tt.chunks...)
			if got := consumer.Content(); got != tt.expected {
				t.Errorf("Content() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestStreamConsumerPublishesMonotonicFullContent(t *testing.T) {
	var published []string
	consumer := NewStreamConsumer(func(full string) {
		published = append(published, full)
	})

	consumer.Feed([]byte("data: {\"text\":\"Rev\"}\n"))
	consumer.Feed([]byte("data: {\"text\":\"PAR \"}\ndata: {\"text\":\"up\"}\n"))
	consumer.Flush()

	expected := []string{"Rev", "RevPAR ", "RevPAR up"}
	if len(published) != len(expected) {
		t.Fatalf("published %d increments, expected %d", len(published), len(expected))
	}
	for i, want := range expected {
		if published[i] != want {
			t.Errorf("published[%d] = %q, expected %q", i, published[i], want)
		}
	}

	prev := ""
	for i, p := range published {
		if len(p) < len(prev) {
			t.Errorf("published[%d] shrank: %q after %q", i, p, prev)
		}
		prev = p
	}
}

func TestStreamConsumerDoneSentinel(t *testing.T) {
	consumer := NewStreamConsumer(nil)

	consumer.Feed([]byte("data: {\"text\":\"body\"}\n"))
	if consumer.Done() {
		t.Error("Done() = true before sentinel")
	}

	consumer.Feed([]byte("data: [DONE]\n"))
	if !consumer.Done() {
		t.Error("Done() = false after sentinel")
	}

	// the transport may still deliver frames after the sentinel; they are
	// drained without being dropped
	consumer.Feed([]byte("data: {\"text\":\" tail\"}\n"))
	if got := consumer.Content(); got != "body tail" {
		t.Errorf("Content() = %q, expected %q", got, "body tail")
	}
}

func TestStreamConsumerFlushIgnoresBareCarry(t *testing.T) {
	consumer := NewStreamConsumer(nil)
	consumer.Feed([]byte("garbage without prefix"))
	consumer.Flush()

	if got := consumer.Content(); got != "" {
		t.Errorf("Content() = %q, expected empty", got)
	}
}
