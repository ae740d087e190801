package repository

import (
	"testing"
	"time"
)

func conv(id string, age time.Duration, now time.Time) Conversation {
	return Conversation{ID: id, Title: id, UpdatedAt: now.Add(-age)}
}

func TestPruneExpired(t *testing.T) {
	now := time.Now()
	retention := 7 * 24 * time.Hour

	tests := []struct {
		name        string
		input       []Conversation
		expectedIDs []string
		changed     bool
	}{
		{
			name:        "Empty list untouched",
			input:       nil,
			expectedIDs: []string{},
			changed:     false,
		},
		{
			name:        "Fresh conversations kept",
			input:       []Conversation{conv("a", time.Hour, now), conv("b", 6*24*time.Hour, now)},
			expectedIDs: []string{"a", "b"},
			changed:     false,
		},
		{
			name:        "Eight day old conversation dropped",
			input:       []Conversation{conv("a", time.Hour, now), conv("old", 8*24*time.Hour, now)},
			expectedIDs: []string{"a"},
			changed:     true,
		},
		{
			name:        "All expired",
			input:       []Conversation{conv("x", 30*24*time.Hour, now), conv("y", 9*24*time.Hour, now)},
			expectedIDs: []string{},
			changed:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, changed := pruneExpired(tt.input, now, retention)
			if changed != tt.changed {
				t.Errorf("pruneExpired() changed = %v, expected %v", changed, tt.changed)
			}
			if len(result) != len(tt.expectedIDs) {
				t.Fatalf("pruneExpired() kept %d conversations, expected %d", len(result), len(tt.expectedIDs))
			}
			for i, id := range tt.expectedIDs {
				if result[i].ID != id {
					t.Errorf("pruneExpired()[%d].ID = %q, expected %q", i, result[i].ID, id)
				}
			}
		})
	}
}

func TestUpsert(t *testing.T) {
	now := time.Now()

	t.Run("New conversation prepended", func(t *testing.T) {
		existing := []Conversation{conv("a", time.Hour, now), conv("b", 2*time.Hour, now)}
		result := upsert(existing, conv("c", 0, now), 10)

		if len(result) != 3 {
			t.Fatalf("upsert() len = %d, expected 3", len(result))
		}
		if result[0].ID != "c" {
			t.Errorf("upsert()[0].ID = %q, expected %q", result[0].ID, "c")
		}
	})

	t.Run("Existing conversation replaced in place", func(t *testing.T) {
		existing := []Conversation{conv("a", time.Hour, now), conv("b", 2*time.Hour, now)}
		updated := conv("b", 0, now)
		updated.Title = "renamed"
		result := upsert(existing, updated, 10)

		if len(result) != 2 {
			t.Fatalf("upsert() len = %d, expected 2", len(result))
		}
		if result[1].ID != "b" || result[1].Title != "renamed" {
			t.Errorf("upsert()[1] = %q/%q, expected b/renamed", result[1].ID, result[1].Title)
		}
	})

	t.Run("Eleventh conversation evicts the oldest, never the new one", func(t *testing.T) {
		existing := make([]Conversation, 0, 10)
		for _, id := range []string{"j", "i", "h", "g", "f", "e", "d", "c", "b", "a"} {
			existing = append(existing, conv(id, time.Hour, now))
		}

		result := upsert(existing, conv("new", 0, now), 10)
		if len(result) != 10 {
			t.Fatalf("upsert() len = %d, expected 10", len(result))
		}
		if result[0].ID != "new" {
			t.Errorf("upsert()[0].ID = %q, expected %q", result[0].ID, "new")
		}
		for _, c := range result {
			if c.ID == "a" {
				t.Errorf("upsert() kept evicted tail conversation %q", c.ID)
			}
		}
	})
}

func TestApplyFeedback(t *testing.T) {
	build := func() []Conversation {
		return []Conversation{
			{ID: "c1", Messages: []Message{{ID: "m1", Role: "assistant"}, {ID: "m2", Role: "assistant"}}},
			{ID: "c2", Messages: []Message{{ID: "m3", Role: "assistant", Feedback: FeedbackPositive}}},
		}
	}

	t.Run("Sets a fresh signal", func(t *testing.T) {
		conversations := build()
		applied, found := applyFeedback(conversations, "c1", "m2", FeedbackNegative)
		if !found || applied != FeedbackNegative {
			t.Fatalf("applyFeedback() = %q/%v, expected negative/found", applied, found)
		}
		if conversations[0].Messages[1].Feedback != FeedbackNegative {
			t.Errorf("message feedback = %q, expected %q", conversations[0].Messages[1].Feedback, FeedbackNegative)
		}
	})

	t.Run("Same signal twice toggles it off", func(t *testing.T) {
		conversations := build()
		applied, found := applyFeedback(conversations, "c2", "m3", FeedbackPositive)
		if !found || applied != "" {
			t.Fatalf("applyFeedback() = %q/%v, expected cleared/found", applied, found)
		}
		if conversations[1].Messages[0].Feedback != "" {
			t.Errorf("message feedback = %q, expected cleared", conversations[1].Messages[0].Feedback)
		}
	})

	t.Run("Opposite signal replaces the current one", func(t *testing.T) {
		conversations := build()
		applied, _ := applyFeedback(conversations, "c2", "m3", FeedbackNegative)
		if applied != FeedbackNegative {
			t.Errorf("applyFeedback() = %q, expected %q", applied, FeedbackNegative)
		}
	})

	t.Run("Empty conversation id searches everywhere", func(t *testing.T) {
		conversations := build()
		applied, found := applyFeedback(conversations, "", "m3", FeedbackNegative)
		if !found || applied != FeedbackNegative {
			t.Errorf("applyFeedback() = %q/%v, expected negative/found", applied, found)
		}
	})

	t.Run("Unknown message reports not found", func(t *testing.T) {
		conversations := build()
		if _, found := applyFeedback(conversations, "c1", "nope", FeedbackPositive); found {
			t.Error("applyFeedback() found = true for an unknown message")
		}
	})
}
