package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"steinberg/sources/configuration"
	"steinberg/sources/platform"
	"steinberg/sources/tracing"

	"github.com/redis/go-redis/v9"
)

const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// Attachment keeps only file metadata; the content itself goes to the
// advisor and is never persisted.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

type Message struct {
	ID          string               `json:"id"`
	Role        platform.MessageRole `json:"role"`
	Content     string               `json:"content"`
	Attachments []Attachment         `json:"attachments,omitempty"`
	Feedback    string               `json:"feedback,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
}

type Conversation struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Messages       []Message `json:"messages"`
	Summary        string    `json:"summary,omitempty"`
	SummarizedUpTo int       `json:"summarizedUpTo"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ConversationsRepository keeps each visitor's recent conversations as one
// JSON blob plus a separate active pointer. Expired entries are pruned on the
// first read after they age out and the pruned list is written back.
type ConversationsRepository struct {
	redis  *redis.Client
	config *configuration.Config
}

func NewConversationsRepository(redis *redis.Client, config *configuration.Config) *ConversationsRepository {
	return &ConversationsRepository{redis: redis, config: config}
}

func (x *ConversationsRepository) listKey(session string) string {
	return fmt.Sprintf("conversations:%s", session)
}

func (x *ConversationsRepository) activeKey(session string) string {
	return fmt.Sprintf("active:%s", session)
}

func (x *ConversationsRepository) retention() time.Duration {
	return time.Duration(x.config.Conversation.RetentionDays) * 24 * time.Hour
}

func (x *ConversationsRepository) List(logger *tracing.Logger, session string) ([]Conversation, error) {
	defer tracing.ProfilePoint(logger, "Conversations list completed", "repository.conversations.list", tracing.SessionId, session)()

	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	conversations, err := x.load(ctx, logger, session)
	if err != nil {
		return nil, err
	}

	pruned, changed := pruneExpired(conversations, time.Now(), x.retention())
	if changed {
		if err := x.persist(ctx, logger, session, pruned); err != nil {
			return nil, err
		}
		logger.I("conversations_pruned", tracing.SessionId, session, "before", len(conversations), "after", len(pruned))
	}

	return pruned, nil
}

func (x *ConversationsRepository) Get(logger *tracing.Logger, session string, id string) (*Conversation, error) {
	conversations, err := x.List(logger, session)
	if err != nil {
		return nil, err
	}

	for i := range conversations {
		if conversations[i].ID == id {
			return &conversations[i], nil
		}
	}
	return nil, nil
}

// Save upserts by id: an existing conversation is replaced in place, a new one
// is prepended and the tail truncated to the configured maximum.
func (x *ConversationsRepository) Save(logger *tracing.Logger, session string, conversation *Conversation) error {
	defer tracing.ProfilePoint(logger, "Conversations save completed", "repository.conversations.save", tracing.SessionId, session, tracing.ConversationId, conversation.ID)()

	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	conversations, err := x.load(ctx, logger, session)
	if err != nil {
		return err
	}

	updated := upsert(conversations, *conversation, x.config.Conversation.MaxConversations)
	if err := x.persist(ctx, logger, session, updated); err != nil {
		return err
	}

	logger.I("conversation_saved", tracing.SessionId, session, tracing.ConversationId, conversation.ID, tracing.MessageCount, len(conversation.Messages))
	return nil
}

// Rename trims the submitted title and applies it. An empty title after the
// trim is a no-op. UpdatedAt is left alone so renames do not affect retention.
func (x *ConversationsRepository) Rename(logger *tracing.Logger, session string, id string, title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil
	}

	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	conversations, err := x.load(ctx, logger, session)
	if err != nil {
		return err
	}

	for i := range conversations {
		if conversations[i].ID == id {
			conversations[i].Title = trimmed
			if err := x.persist(ctx, logger, session, conversations); err != nil {
				return err
			}
			logger.I("conversation_renamed", tracing.SessionId, session, tracing.ConversationId, id)
			return nil
		}
	}

	return nil
}

// SetMessageFeedback applies a feedback signal to a message, toggling it off
// when the same signal lands twice. Returns the resulting value and whether
// the message was found. UpdatedAt is left alone, like Rename.
func (x *ConversationsRepository) SetMessageFeedback(logger *tracing.Logger, session string, conversationID string, messageID string, value string) (string, bool, error) {
	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	conversations, err := x.load(ctx, logger, session)
	if err != nil {
		return "", false, err
	}

	applied, found := applyFeedback(conversations, conversationID, messageID, value)
	if !found {
		return "", false, nil
	}

	if err := x.persist(ctx, logger, session, conversations); err != nil {
		return "", false, err
	}

	logger.I("message_feedback_set", tracing.SessionId, session, tracing.ConversationId, conversationID, "feedback", applied)
	return applied, true, nil
}

// applyFeedback mutates the matching message in place. An empty
// conversationID searches every conversation.
func applyFeedback(conversations []Conversation, conversationID string, messageID string, value string) (string, bool) {
	for ci := range conversations {
		if conversationID != "" && conversations[ci].ID != conversationID {
			continue
		}
		for mi := range conversations[ci].Messages {
			if conversations[ci].Messages[mi].ID != messageID {
				continue
			}
			if conversations[ci].Messages[mi].Feedback == value {
				value = ""
			}
			conversations[ci].Messages[mi].Feedback = value
			return value, true
		}
	}
	return "", false
}

// Delete removes a conversation. Deleting the active one also clears the
// active pointer.
func (x *ConversationsRepository) Delete(logger *tracing.Logger, session string, id string) error {
	defer tracing.ProfilePoint(logger, "Conversations delete completed", "repository.conversations.delete", tracing.SessionId, session, tracing.ConversationId, id)()

	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	conversations, err := x.load(ctx, logger, session)
	if err != nil {
		return err
	}

	kept := make([]Conversation, 0, len(conversations))
	for _, c := range conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}

	if err := x.persist(ctx, logger, session, kept); err != nil {
		return err
	}

	active, err := x.redis.Get(ctx, x.activeKey(session)).Result()
	if err == nil && active == id {
		if err := x.redis.Del(ctx, x.activeKey(session)).Err(); err != nil {
			logger.E("Failed to clear active pointer", tracing.InnerError, err, tracing.SessionId, session)
			return err
		}
	}

	logger.I("conversation_deleted", tracing.SessionId, session, tracing.ConversationId, id)
	return nil
}

func (x *ConversationsRepository) Active(logger *tracing.Logger, session string) (string, error) {
	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	id, err := x.redis.Get(ctx, x.activeKey(session)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		logger.E("Failed to read active pointer", tracing.InnerError, err, tracing.SessionId, session)
		return "", err
	}
	return id, nil
}

func (x *ConversationsRepository) SetActive(logger *tracing.Logger, session string, id string) error {
	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	if err := x.redis.Set(ctx, x.activeKey(session), id, x.retention()+24*time.Hour).Err(); err != nil {
		logger.E("Failed to set active pointer", tracing.InnerError, err, tracing.SessionId, session)
		return err
	}
	return nil
}

func (x *ConversationsRepository) ClearActive(logger *tracing.Logger, session string) error {
	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	if err := x.redis.Del(ctx, x.activeKey(session)).Err(); err != nil {
		logger.E("Failed to clear active pointer", tracing.InnerError, err, tracing.SessionId, session)
		return err
	}
	return nil
}

func (x *ConversationsRepository) load(ctx context.Context, logger *tracing.Logger, session string) ([]Conversation, error) {
	data, err := x.redis.Get(ctx, x.listKey(session)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logger.E("Failed to load conversations", tracing.InnerError, err, tracing.SessionId, session)
		return nil, err
	}

	var conversations []Conversation
	if err := json.Unmarshal([]byte(data), &conversations); err != nil {
		logger.E("Failed to unmarshal conversations", tracing.InnerError, err, tracing.SessionId, session)
		return nil, err
	}
	return conversations, nil
}

func (x *ConversationsRepository) persist(ctx context.Context, logger *tracing.Logger, session string, conversations []Conversation) error {
	data, err := json.Marshal(conversations)
	if err != nil {
		logger.E("Failed to marshal conversations", tracing.InnerError, err, tracing.SessionId, session)
		return err
	}

	if err := x.redis.Set(ctx, x.listKey(session), data, x.retention()+24*time.Hour).Err(); err != nil {
		logger.E("Failed to persist conversations", tracing.InnerError, err, tracing.SessionId, session)
		return err
	}
	return nil
}

// pruneExpired drops conversations whose last update is older than the
// retention window. The second return reports whether anything was removed.
func pruneExpired(conversations []Conversation, now time.Time, retention time.Duration) ([]Conversation, bool) {
	cutoff := now.Add(-retention)
	kept := make([]Conversation, 0, len(conversations))
	for _, c := range conversations {
		if c.UpdatedAt.After(cutoff) {
			kept = append(kept, c)
		}
	}
	return kept, len(kept) != len(conversations)
}

func upsert(conversations []Conversation, conversation Conversation, max int) []Conversation {
	for i := range conversations {
		if conversations[i].ID == conversation.ID {
			conversations[i] = conversation
			return conversations
		}
	}

	updated := append([]Conversation{conversation}, conversations...)
	if len(updated) > max {
		updated = updated[:max]
	}
	return updated
}
