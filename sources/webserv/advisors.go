package webserv

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"steinberg/sources/artificial"
	"steinberg/sources/balancer"
	"steinberg/sources/metrics"
	"steinberg/sources/platform"
	"steinberg/sources/session"
	"steinberg/sources/tracing"
)

type AdvisorEngine interface {
	Respond(ctx context.Context, log *tracing.Logger, exchange *balancer.Exchange) (*balancer.Result, error)
	RespondStream(ctx context.Context, log *tracing.Logger, exchange *balancer.Exchange, emit func(delta string)) (*balancer.Result, error)
}

type SummaryEngine interface {
	Summarize(ctx context.Context, log *tracing.Logger, messages []platform.WireMessage, locale string) (*artificial.SummaryOutcome, error)
}

// AdvisorHandlers serves the upstream side of the wire: the chat completion
// endpoint the widget session manager consumes and the summarize endpoint
// behind history compaction.
type AdvisorHandlers struct {
	advisor    AdvisorEngine
	summarizer SummaryEngine
	metrics    *metrics.MetricsService
	log        *tracing.Logger
}

func NewAdvisorHandlers(advisor AdvisorEngine, summarizer SummaryEngine, metrics *metrics.MetricsService, log *tracing.Logger) *AdvisorHandlers {
	return &AdvisorHandlers{advisor: advisor, summarizer: summarizer, metrics: metrics, log: log}
}

func (x *AdvisorHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	var request session.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Message ou fichier requis")
		return
	}

	if request.Message == "" && len(request.Files) == 0 {
		writeError(w, http.StatusBadRequest, "Message ou fichier requis")
		return
	}

	exchange := &balancer.Exchange{
		Message: request.Message,
		Locale:  request.Locale,
		History: request.History,
	}
	for _, file := range request.Files {
		exchange.Files = append(exchange.Files, balancer.FilePart{Data: file.Data, MimeType: file.MimeType, Name: file.Name})
	}

	log := x.log.With(tracing.Locale, request.Locale, tracing.MessageCount, len(request.History))

	if request.Stream {
		x.chatStream(w, r, log, exchange)
		return
	}

	result, err := x.advisor.Respond(r.Context(), log, exchange)
	if err != nil {
		x.chatError(w, log, err)
		return
	}

	x.metrics.RecordUsage(result.Tokens, result.Cost.InexactFloat64(), result.Model, "chat")
	writeJSON(w, http.StatusOK, session.ChatResponse{Response: result.Text, TokensUsed: result.Tokens})
}

func (x *AdvisorHandlers) chatStream(w http.ResponseWriter, r *http.Request, log *tracing.Logger, exchange *balancer.Exchange) {
	emit := sseStream(w)
	if emit == nil {
		writeError(w, http.StatusInternalServerError, "Erreur lors de l'analyse. Veuillez réessayer.")
		return
	}

	type textFrame struct {
		Text string `json:"text"`
	}

	result, err := x.advisor.RespondStream(r.Context(), log, exchange, func(delta string) {
		emit(textFrame{Text: delta})
	})

	if err != nil {
		// headers already went out; closing the stream without the done
		// sentinel is what marks the exchange as failed for the consumer
		log.E("Failed to stream advisor response", tracing.InnerError, err)
		return
	}

	x.metrics.RecordUsage(result.Tokens, result.Cost.InexactFloat64(), result.Model, "chat")
	emit(doneFrame)
}

func (x *AdvisorHandlers) chatError(w http.ResponseWriter, log *tracing.Logger, err error) {
	log.E("Failed to complete advisor exchange", tracing.InnerError, err)

	if strings.Contains(strings.ToLower(err.Error()), "quota") {
		writeError(w, http.StatusTooManyRequests, "Quota API dépassé. Réessayez plus tard.")
		return
	}

	writeError(w, http.StatusInternalServerError, "Erreur lors de l'analyse. Veuillez réessayer.")
}

func (x *AdvisorHandlers) Summarize(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Messages []platform.WireMessage `json:"messages"`
		Locale   string                 `json:"locale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || len(request.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "Messages requis")
		return
	}

	outcome, err := x.summarizer.Summarize(r.Context(), x.log, request.Messages, request.Locale)
	if err != nil {
		x.log.E("Failed to summarize conversation", tracing.InnerError, err)
		writeError(w, http.StatusInternalServerError, "Erreur lors du résumé")
		return
	}

	writeJSON(w, http.StatusOK, session.SummaryResult{Summary: outcome.Summary, MessagesCount: outcome.MessagesCount})
}
