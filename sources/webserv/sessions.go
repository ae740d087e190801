package webserv

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"steinberg/sources/localization"
	"steinberg/sources/metrics"
	"steinberg/sources/persistence/entities"
	"steinberg/sources/platform"
	"steinberg/sources/repository"
	"steinberg/sources/session"
	"steinberg/sources/texting/tokenizer"
	"steinberg/sources/tracing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionHandlers is the widget-facing API: everything the chat widget does
// against its anonymous session.
type SessionHandlers struct {
	controller    *session.Controller
	quota         *repository.QuotaRepository
	conversations *repository.ConversationsRepository
	feedbacks     *repository.FeedbacksRepository
	exchanges     *repository.ExchangesRepository
	locman        *localization.LocalizationManager
	metrics       *metrics.MetricsService
	log           *tracing.Logger
}

func NewSessionHandlers(
	controller *session.Controller,
	quota *repository.QuotaRepository,
	conversations *repository.ConversationsRepository,
	feedbacks *repository.FeedbacksRepository,
	exchanges *repository.ExchangesRepository,
	locman *localization.LocalizationManager,
	metrics *metrics.MetricsService,
	log *tracing.Logger,
) *SessionHandlers {
	return &SessionHandlers{
		controller:    controller,
		quota:         quota,
		conversations: conversations,
		feedbacks:     feedbacks,
		exchanges:     exchanges,
		locman:        locman,
		metrics:       metrics,
		log:           log,
	}
}

type sendRequest struct {
	Message string             `json:"message"`
	Files   []session.ChatFile `json:"files,omitempty"`
	Locale  string             `json:"locale"`
	Stream  *bool              `json:"stream,omitempty"`
}

type deltaFrame struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

type settleFrame struct {
	Done           bool                     `json:"done"`
	MessageID      string                   `json:"messageId"`
	ConversationID string                   `json:"conversationId"`
	Failed         bool                     `json:"failed"`
	Quota          *repository.QuotaStatus  `json:"quota"`
	Conversation   *repository.Conversation `json:"conversation,omitempty"`
}

func (x *SessionHandlers) Send(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	var request sendRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	locale := x.locman.ResolveLocale(sid, request.Locale, request.Message)
	log = log.With(tracing.Locale, locale)
	x.metrics.RecordLanguageDetected(locale)

	if request.Message == "" && len(request.Files) == 0 {
		writeError(w, http.StatusBadRequest, "message or file required")
		return
	}

	streamOut := platform.BoolValue(request.Stream, true)

	// SSE headers are deferred until the first delta so that sends rejected
	// before any content can still answer with a plain JSON status
	var emit func(payload any)
	publish := func(messageID, content string) {
		if !streamOut {
			return
		}
		if emit == nil {
			emit = sseStream(w)
		}
		if emit != nil {
			emit(deltaFrame{MessageID: messageID, Content: content})
		}
	}

	outcome, err := x.controller.Send(r.Context(), log, sid, request.Message, request.Files, locale, publish)
	if err != nil {
		if emit != nil {
			emit(doneFrame)
			return
		}
		if errors.Is(err, session.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, x.locman.AnalysisError(locale))
		return
	}

	if outcome.Blocked {
		x.metrics.RecordQuotaBlocked(outcome.Quota.Tier)
		x.metrics.RecordExchange("blocked")
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error": x.locman.QuotaExhausted(locale),
			"quota": outcome.Quota,
		})
		return
	}

	x.settle(log, sid, locale, outcome)

	if streamOut {
		if emit == nil {
			emit = sseStream(w)
		}
		if emit != nil {
			emit(settleFrame{
				Done:           true,
				MessageID:      outcome.MessageID,
				ConversationID: outcome.Conversation.ID,
				Failed:         outcome.Failed,
				Quota:          x.quota.Status(log, sid),
			})
			emit(doneFrame)
		}
		return
	}

	writeJSON(w, http.StatusOK, settleFrame{
		Done:           true,
		MessageID:      outcome.MessageID,
		ConversationID: outcome.Conversation.ID,
		Failed:         outcome.Failed,
		Quota:          x.quota.Status(log, sid),
		Conversation:   outcome.Conversation,
	})
}

// settle writes the usage ledger and counters once an exchange finished.
func (x *SessionHandlers) settle(log *tracing.Logger, sid string, locale string, outcome *session.SendOutcome) {
	if outcome.Failed {
		x.metrics.RecordExchange("failed")
		return
	}

	x.metrics.RecordExchange("ok")
	if outcome.Streamed {
		x.metrics.RecordStreamIncrements(outcome.StreamLines)
	}

	responseTokens := outcome.TokensUsed
	if responseTokens == 0 {
		responseTokens = tokenizer.Tokens(log, outcome.Content)
	}

	exchange := &entities.Exchange{
		ID:             uuid.New(),
		SessionID:      sid,
		ConversationID: outcome.Conversation.ID,
		Model:          "advisor",
		Locale:         locale,
		Tier:           outcome.Quota.Tier,
		PromptTokens:   tokenizer.Tokens(log, lastUserContent(outcome.Conversation)),
		ResponseTokens: responseTokens,
		Cost:           decimal.Zero,
		Streamed:       outcome.Streamed,
	}

	if err := x.exchanges.SaveExchange(log, exchange); err != nil {
		log.E("Failed to record exchange", tracing.InnerError, err)
	}
}

func (x *SessionHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	locale := x.locman.ResolveLocale(sid, r.URL.Query().Get("locale"), "")

	conversation, err := x.controller.Reset(log, sid, locale)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset session")
		return
	}

	writeJSON(w, http.StatusOK, conversation)
}

func (x *SessionHandlers) Switch(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	var request struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.ConversationID == "" {
		writeError(w, http.StatusBadRequest, "conversationId is required")
		return
	}

	conversation, err := x.controller.Switch(log, sid, request.ConversationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to switch conversation")
		return
	}
	if conversation == nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, conversation)
}

func (x *SessionHandlers) Current(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	locale := x.locman.ResolveLocale(sid, r.URL.Query().Get("locale"), "")

	conversation, err := x.controller.Current(log, sid, locale)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	writeJSON(w, http.StatusOK, conversation)
}

func (x *SessionHandlers) List(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	conversations, err := x.conversations.List(log, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

func (x *SessionHandlers) Rename(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	var request struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := x.conversations.Rename(log, sid, r.PathValue("id"), request.Title); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rename conversation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (x *SessionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	if err := x.conversations.Delete(log, sid, r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (x *SessionHandlers) Quota(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	costToday := decimal.Zero
	if cost, err := x.exchanges.GetSessionCostToday(log, sid); err == nil {
		costToday = cost
	}

	writeJSON(w, http.StatusOK, struct {
		*repository.QuotaStatus
		CostToday decimal.Decimal `json:"costToday"`
	}{x.quota.Status(log, sid), costToday})
}

func (x *SessionHandlers) Unlock(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	status, err := x.quota.GrantPartnerTier(log, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unlock partner tier")
		return
	}

	x.metrics.RecordQuotaUnlock("partner")
	writeJSON(w, http.StatusOK, status)
}

func (x *SessionHandlers) RedeemVIP(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	var request struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	granted, err := x.quota.RedeemVIP(log, sid, request.Code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to redeem code")
		return
	}

	if granted {
		x.metrics.RecordQuotaUnlock("vip")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"granted": granted,
		"quota":   x.quota.Status(log, sid),
	})
}

func (x *SessionHandlers) Feedback(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	var request struct {
		ConversationID string  `json:"conversationId"`
		MessageID      string  `json:"messageId"`
		Helpful        bool    `json:"helpful"`
		Comment        *string `json:"comment,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.MessageID == "" {
		writeError(w, http.StatusBadRequest, "messageId is required")
		return
	}

	value := repository.FeedbackNegative
	if request.Helpful {
		value = repository.FeedbackPositive
	}

	// the message carries the current signal; sending the same one twice
	// toggles it back off
	applied, found, err := x.conversations.SetMessageFeedback(log, sid, request.ConversationID, request.MessageID, value)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record feedback")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}

	if applied != "" {
		feedback := &entities.Feedback{
			ID:             uuid.New(),
			SessionID:      sid,
			ConversationID: request.ConversationID,
			MessageID:      request.MessageID,
			Helpful:        request.Helpful,
			Comment:        request.Comment,
		}

		if err := x.feedbacks.CreateFeedback(log, feedback); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to record feedback")
			return
		}

		if request.Helpful {
			x.metrics.RecordFeedback("helpful")
		} else {
			x.metrics.RecordFeedback("unhelpful")
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"feedback": applied})
}

func (x *SessionHandlers) Export(w http.ResponseWriter, r *http.Request) {
	sid, log, ok := x.session(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	conversation, err := x.conversations.Get(log, sid, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	if conversation == nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	switch r.URL.Query().Get("format") {
	case "txt":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=conversation-%s.txt", id))
		_, _ = w.Write([]byte(exportText(conversation)))
	default:
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=conversation-%s.json", id))
		writeJSON(w, http.StatusOK, conversation)
	}
}

func (x *SessionHandlers) QuickReplies(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	writeJSON(w, http.StatusOK, map[string]any{"replies": x.locman.QuickReplies(locale)})
}

func (x *SessionHandlers) session(w http.ResponseWriter, r *http.Request) (string, *tracing.Logger, bool) {
	sid := r.PathValue("sid")
	if err := platform.ValidateSessionId(sid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}
	return sid, x.log.With(tracing.SessionId, sid), true
}

func exportText(conversation *repository.Conversation) string {
	var b strings.Builder

	if conversation.Title != "" {
		b.WriteString(conversation.Title)
		b.WriteString("\n\n")
	}

	for _, message := range conversation.Messages {
		switch message.Role {
		case platform.MessageRoleAssistant:
			b.WriteString("Analyst: ")
		case platform.MessageRoleSystem:
			b.WriteString("Context: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(message.Content)
		for _, attachment := range message.Attachments {
			b.WriteString(fmt.Sprintf("\n[Attachment: %s]", attachment.Name))
		}
		b.WriteString("\n\n")
	}

	return b.String()
}

func lastUserContent(conversation *repository.Conversation) string {
	for i := len(conversation.Messages) - 1; i >= 0; i-- {
		if conversation.Messages[i].Role == platform.MessageRoleUser {
			return conversation.Messages[i].Content
		}
	}
	return ""
}
