package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"steinberg/sources/configuration"
	"steinberg/sources/features"
	"steinberg/sources/platform"
	"steinberg/sources/repository"
	"steinberg/sources/texting"
	"steinberg/sources/texting/transform"
	"steinberg/sources/tracing"

	"github.com/google/uuid"
)

// ErrBusy is returned when a send arrives while another one is still in
// flight for the same session.
var ErrBusy = errors.New("another exchange is already in flight for this session")

type SendOutcome struct {
	Conversation *repository.Conversation
	MessageID    string
	Content      string
	TokensUsed   int
	Blocked      bool
	Failed       bool
	Streamed     bool
	StreamLines  int
	Quota        *repository.QuotaStatus
}

// Controller runs one exchange end to end: quota gate, optimistic append,
// history compaction, upstream streaming keyed to the placeholder message,
// and persistence of the outcome. Each send walks idle, quota check, then
// either blocked or sending, streaming, settled.
type Controller struct {
	quota     QuotaStore
	store     ConversationStore
	chat      ChatService
	compactor *Compactor
	guard     Guard
	texts     Localizer
	features  FeatureGate
	config    *configuration.Config
	log       *tracing.Logger
}

func NewController(
	quota QuotaStore,
	store ConversationStore,
	chat ChatService,
	compactor *Compactor,
	guard Guard,
	texts Localizer,
	features FeatureGate,
	config *configuration.Config,
	log *tracing.Logger,
) *Controller {
	return &Controller{
		quota:     quota,
		store:     store,
		chat:      chat,
		compactor: compactor,
		guard:     guard,
		texts:     texts,
		features:  features,
		config:    config,
		log:       log,
	}
}

// Send runs a full exchange. The publish callback receives the placeholder
// message id and the complete normalized content after every increment.
func (x *Controller) Send(ctx context.Context, logger *tracing.Logger, session string, text string, files []ChatFile, locale string, publish func(messageID, content string)) (*SendOutcome, error) {
	if !x.guard.TryAcquire(logger, session) {
		logger.W("send_rejected_inflight", tracing.SessionId, session)
		return nil, ErrBusy
	}
	defer x.guard.Release(logger, session)

	// the quota gate comes first: a blocked send must not append messages or
	// reach the advisor
	status := x.quota.Status(logger, session)
	if status.Blocked {
		logger.I("send_blocked_quota", tracing.SessionId, session, tracing.QuotaUsed, status.Used, tracing.QuotaCap, status.Cap, tracing.QuotaTier, status.Tier)
		return &SendOutcome{Blocked: true, Quota: status}, nil
	}

	conversation, err := x.activeConversation(logger, session, locale)
	if err != nil {
		return nil, err
	}

	// compaction runs against the list as it stands, before the new turn
	if x.features.IsEnabledOrDefault(features.FeatureCompaction, true) && x.compactor.ShouldCompact(conversation) {
		x.compactor.Compact(ctx, logger, conversation, locale)
	}
	history := x.compactor.HistoryPayload(conversation)

	now := time.Now()
	var attachments []repository.Attachment
	for _, file := range files {
		attachments = append(attachments, repository.Attachment{Name: file.Name, MimeType: file.MimeType})
	}
	userMessage := repository.Message{ID: uuid.NewString(), Role: platform.MessageRoleUser, Content: text, Attachments: attachments, Timestamp: now}
	placeholder := repository.Message{ID: uuid.NewString(), Role: platform.MessageRoleAssistant, Content: "", Timestamp: now}
	conversation.Messages = append(conversation.Messages, userMessage, placeholder)

	streaming := x.features.IsEnabledOrDefault(features.FeatureStreaming, true)
	request := &ChatRequest{Message: text, Files: files, Locale: locale, History: history, Stream: streaming}

	var content string
	var tokensUsed int
	var streamLines int
	if streaming {
		consumer := NewStreamConsumer(func(full string) {
			applyContent(conversation, placeholder.ID, full)
			if publish != nil {
				publish(placeholder.ID, full)
			}
		})
		err = x.chat.StreamMessage(ctx, logger, request, consumer)
		if err == nil && !consumer.Done() {
			// transports can reach EOF without the logical end marker when
			// the advisor dies mid-stream; the partial reply must not settle
			// as a successful exchange
			err = errors.New("stream ended before completion")
		}
		content = consumer.Content()
		streamLines = consumer.Lines()
		if err == nil {
			logger.I("stream_settled", tracing.SessionId, session, tracing.ConversationId, conversation.ID, tracing.StreamLines, consumer.Lines())
		}
	} else {
		var response *ChatResponse
		response, err = x.chat.SendMessage(ctx, logger, request)
		if err == nil {
			content = texting.Normalize(response.Response)
			tokensUsed = response.TokensUsed
			applyContent(conversation, placeholder.ID, content)
			if publish != nil {
				publish(placeholder.ID, content)
			}
		}
	}

	if err != nil {
		// the placeholder is overwritten with the localized error text, the
		// conversation is still persisted, and no quota is charged
		logger.E("Failed to complete exchange", tracing.InnerError, err, tracing.SessionId, session, tracing.ConversationId, conversation.ID)

		failure := x.texts.AnalysisError(locale)
		applyContent(conversation, placeholder.ID, failure)
		if publish != nil {
			publish(placeholder.ID, failure)
		}

		if perr := x.persist(logger, session, conversation, userMessage); perr != nil {
			logger.E("Failed to persist conversation after error", tracing.InnerError, perr, tracing.SessionId, session)
		}

		return &SendOutcome{
			Conversation: conversation,
			MessageID:    placeholder.ID,
			Content:      failure,
			Failed:       true,
			Streamed:     streaming,
			StreamLines:  streamLines,
			Quota:        status,
		}, nil
	}

	applyContent(conversation, placeholder.ID, content)

	if status.Tier != platform.TierVIP {
		x.quota.Charge(logger, session)
	}

	if err := x.persist(logger, session, conversation, userMessage); err != nil {
		return nil, err
	}

	return &SendOutcome{
		Conversation: conversation,
		MessageID:    placeholder.ID,
		Content:      content,
		TokensUsed:   tokensUsed,
		Streamed:     streaming,
		StreamLines:  streamLines,
		Quota:        status,
	}, nil
}

// Reset starts over: fresh conversation identity, cleared active pointer,
// seeded welcome turn and the summary watermark back at zero. It is the only
// path on which the watermark decreases. The fresh conversation is not
// persisted until a real message lands in it.
func (x *Controller) Reset(logger *tracing.Logger, session string, locale string) (*repository.Conversation, error) {
	if err := x.store.ClearActive(logger, session); err != nil {
		return nil, err
	}

	conversation := x.freshConversation(locale)
	logger.I("session_reset", tracing.SessionId, session, tracing.ConversationId, conversation.ID)
	return conversation, nil
}

// Switch activates a stored conversation, replacing the message list and the
// compaction state wholesale.
func (x *Controller) Switch(logger *tracing.Logger, session string, id string) (*repository.Conversation, error) {
	conversation, err := x.store.Get(logger, session, id)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		logger.W("switch_target_missing", tracing.SessionId, session, tracing.ConversationId, id)
		return nil, nil
	}

	if err := x.store.SetActive(logger, session, id); err != nil {
		return nil, err
	}

	logger.I("session_switched", tracing.SessionId, session, tracing.ConversationId, id, tracing.MessageCount, len(conversation.Messages))
	return conversation, nil
}

// Current resolves the active conversation, falling back to a fresh welcome
// one when the pointer is missing or dangles after a prune.
func (x *Controller) Current(logger *tracing.Logger, session string, locale string) (*repository.Conversation, error) {
	return x.activeConversation(logger, session, locale)
}

func (x *Controller) activeConversation(logger *tracing.Logger, session string, locale string) (*repository.Conversation, error) {
	id, err := x.store.Active(logger, session)
	if err != nil {
		return nil, err
	}

	if id != "" {
		conversation, err := x.store.Get(logger, session, id)
		if err != nil {
			return nil, err
		}
		if conversation != nil {
			return conversation, nil
		}
	}

	return x.freshConversation(locale), nil
}

func (x *Controller) freshConversation(locale string) *repository.Conversation {
	now := time.Now()
	return &repository.Conversation{
		ID:        strconv.FormatInt(now.UnixNano(), 10),
		CreatedAt: now,
		UpdatedAt: now,
		Messages: []repository.Message{{
			ID:        WelcomeMessageID,
			Role:      platform.MessageRoleAssistant,
			Content:   x.texts.Welcome(locale),
			Timestamp: now,
		}},
	}
}

func (x *Controller) persist(logger *tracing.Logger, session string, conversation *repository.Conversation, firstUser repository.Message) error {
	if conversation.Title == "" {
		conversation.Title = transform.TitleFromContent(firstUser.Content, x.config.Conversation.TitleLength)
	}
	conversation.UpdatedAt = time.Now()

	if err := x.store.Save(logger, session, conversation); err != nil {
		return err
	}
	return x.store.SetActive(logger, session, conversation.ID)
}

// applyContent overwrites the placeholder's content, located by message id.
// Later messages may exist by the time a slow delta lands, so "last in list"
// is never a safe target.
func applyContent(conversation *repository.Conversation, messageID string, content string) {
	for i := range conversation.Messages {
		if conversation.Messages[i].ID == messageID {
			conversation.Messages[i].Content = content
			return
		}
	}
}
