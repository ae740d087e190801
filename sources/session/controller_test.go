package session

import (
	"context"
	"errors"
	"testing"

	"steinberg/sources/configuration"
	"steinberg/sources/features"
	"steinberg/sources/platform"
	"steinberg/sources/repository"
	"steinberg/sources/tracing"
)

type fakeQuota struct {
	status  repository.QuotaStatus
	charges int
}

func (f *fakeQuota) Status(logger *tracing.Logger, session string) *repository.QuotaStatus {
	s := f.status
	return &s
}

func (f *fakeQuota) Charge(logger *tracing.Logger, session string) {
	f.charges++
}

type fakeStore struct {
	conversations map[string]*repository.Conversation
	active        string
	saves         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{conversations: map[string]*repository.Conversation{}}
}

func (f *fakeStore) Get(logger *tracing.Logger, session string, id string) (*repository.Conversation, error) {
	if c, ok := f.conversations[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) Save(logger *tracing.Logger, session string, conversation *repository.Conversation) error {
	copied := *conversation
	f.conversations[conversation.ID] = &copied
	f.saves++
	return nil
}

func (f *fakeStore) Active(logger *tracing.Logger, session string) (string, error) {
	return f.active, nil
}

func (f *fakeStore) SetActive(logger *tracing.Logger, session string, id string) error {
	f.active = id
	return nil
}

func (f *fakeStore) ClearActive(logger *tracing.Logger, session string) error {
	f.active = ""
	return nil
}

type fakeChat struct {
	frames  []string
	err     error
	lastReq *ChatRequest
}

func (f *fakeChat) StreamMessage(ctx context.Context, logger *tracing.Logger, request *ChatRequest, consumer *StreamConsumer) error {
	f.lastReq = request
	if f.err != nil {
		return f.err
	}
	for _, frame := range f.frames {
		consumer.Feed([]byte(frame))
	}
	consumer.Flush()
	return nil
}

func (f *fakeChat) SendMessage(ctx context.Context, logger *tracing.Logger, request *ChatRequest) (*ChatResponse, error) {
	f.lastReq = request
	if f.err != nil {
		return nil, f.err
	}
	return &ChatResponse{Response: "non-streamed answer", TokensUsed: 42}, nil
}

type fakeGuard struct {
	held     map[string]bool
	rejected int
}

func newFakeGuard() *fakeGuard { return &fakeGuard{held: map[string]bool{}} }

func (f *fakeGuard) TryAcquire(logger *tracing.Logger, session string) bool {
	if f.held[session] {
		f.rejected++
		return false
	}
	f.held[session] = true
	return true
}

func (f *fakeGuard) Release(logger *tracing.Logger, session string) {
	delete(f.held, session)
}

type fakeTexts struct{}

func (fakeTexts) Welcome(locale string) string {
	if locale == "fr" {
		return "Bienvenue."
	}
	return "Welcome."
}

func (fakeTexts) AnalysisError(locale string) string {
	if locale == "fr" {
		return "Une erreur est survenue lors de l'analyse. Veuillez réessayer."
	}
	return "An error occurred during analysis. Please try again."
}

type fakeFeatures map[string]bool

func (f fakeFeatures) IsEnabledOrDefault(name string, defaultValue bool) bool {
	if v, ok := f[name]; ok {
		return v
	}
	return defaultValue
}

type controllerHarness struct {
	controller *Controller
	quota      *fakeQuota
	store      *fakeStore
	chat       *fakeChat
	guard      *fakeGuard
	log        *tracing.Logger
}

func harnessConfig() *configuration.Config {
	config := compactionConfig()
	config.Quota = configuration.QuotaConfig{DiscoveryCap: 3, PartnerCap: 20, UnlockOffset: 17, VIPCode: "steinberg-vip-member"}
	config.Conversation = configuration.ConversationConfig{MaxConversations: 10, RetentionDays: 7, TitleLength: 40}
	return config
}

func newHarness() *controllerHarness {
	config := harnessConfig()

	quota := &fakeQuota{status: repository.QuotaStatus{Used: 0, Cap: 3, Remaining: 3, Tier: platform.TierDiscovery}}
	store := newFakeStore()
	chat := &fakeChat{frames: []string{"data: {\"text\":\"Here is \"}\n", "data: {\"text\":\"the analysis.\"}\ndata: [DONE]\n"}}
	guard := newFakeGuard()
	log := tracing.NewConsoleLogger()

	compactor := NewCompactor(&fakeSummarizer{result: &SummaryResult{Summary: "gist"}}, testMetrics(), config)
	controller := NewController(quota, store, chat, compactor, guard, fakeTexts{}, fakeFeatures{}, config, log)

	return &controllerHarness{controller: controller, quota: quota, store: store, chat: chat, guard: guard, log: log}
}

func TestSendHappyPath(t *testing.T) {
	h := newHarness()

	outcome, err := h.controller.Send(context.Background(), h.log, "visitor-1", "Analyze my reviews", nil, "en", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if outcome.Blocked || outcome.Failed {
		t.Fatalf("Send() outcome blocked=%v failed=%v, expected clean success", outcome.Blocked, outcome.Failed)
	}
	if outcome.Content != "Here is the analysis." {
		t.Errorf("Content = %q, expected full assembled reply", outcome.Content)
	}

	messages := outcome.Conversation.Messages
	if len(messages) != 3 {
		t.Fatalf("conversation has %d messages, expected welcome + user + assistant", len(messages))
	}
	if messages[0].ID != WelcomeMessageID {
		t.Errorf("messages[0].ID = %q, expected welcome", messages[0].ID)
	}
	if messages[1].Role != platform.MessageRoleUser || messages[1].Content != "Analyze my reviews" {
		t.Errorf("messages[1] = %s/%q, expected the user turn", messages[1].Role, messages[1].Content)
	}
	if messages[2].ID != outcome.MessageID || messages[2].Content != "Here is the analysis." {
		t.Errorf("messages[2] = %q/%q, expected the settled placeholder", messages[2].ID, messages[2].Content)
	}

	if h.quota.charges != 1 {
		t.Errorf("quota charged %d times, expected once after success", h.quota.charges)
	}
	if h.store.saves != 1 {
		t.Errorf("store saved %d times, expected once", h.store.saves)
	}
	if h.store.active != outcome.Conversation.ID {
		t.Errorf("active pointer = %q, expected %q", h.store.active, outcome.Conversation.ID)
	}
	if outcome.Conversation.Title != "Analyze my reviews" {
		t.Errorf("Title = %q, expected derived from first user message", outcome.Conversation.Title)
	}
}

func TestSendBlockedAppendsNothing(t *testing.T) {
	h := newHarness()
	h.quota.status = repository.QuotaStatus{Used: 3, Cap: 3, Remaining: 0, Tier: platform.TierDiscovery, Blocked: true}

	outcome, err := h.controller.Send(context.Background(), h.log, "visitor-1", "one more?", nil, "en", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !outcome.Blocked {
		t.Fatal("outcome.Blocked = false, expected blocked send")
	}
	if outcome.Conversation != nil {
		t.Error("blocked send produced a conversation, expected no append at all")
	}
	if h.quota.charges != 0 {
		t.Errorf("quota charged %d times on a blocked send", h.quota.charges)
	}
	if h.store.saves != 0 {
		t.Errorf("store saved %d times on a blocked send", h.store.saves)
	}
	if h.chat.lastReq != nil {
		t.Error("remote chat was called on a blocked send")
	}
}

func TestSendFailureOverwritesPlaceholderAndSkipsCharge(t *testing.T) {
	h := newHarness()
	h.chat.err = errors.New("upstream 500")

	outcome, err := h.controller.Send(context.Background(), h.log, "visitor-1", "hello", nil, "fr", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !outcome.Failed {
		t.Fatal("outcome.Failed = false, expected failure outcome")
	}

	expected := "Une erreur est survenue lors de l'analyse. Veuillez réessayer."
	last := outcome.Conversation.Messages[len(outcome.Conversation.Messages)-1]
	if last.ID != outcome.MessageID || last.Content != expected {
		t.Errorf("placeholder = %q, expected localized error text", last.Content)
	}

	if h.quota.charges != 0 {
		t.Errorf("quota charged %d times on failure, expected zero", h.quota.charges)
	}
	if h.store.saves != 1 {
		t.Errorf("store saved %d times, failed exchanges must still persist", h.store.saves)
	}
}

func TestSendStreamWithoutDoneSettlesAsFailure(t *testing.T) {
	h := newHarness()
	h.chat.frames = []string{"data: {\"text\":\"partial ans\"}\n"}

	outcome, err := h.controller.Send(context.Background(), h.log, "visitor-1", "hello", nil, "fr", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !outcome.Failed {
		t.Fatal("outcome.Failed = false for a stream that never reached the done sentinel")
	}

	expected := "Une erreur est survenue lors de l'analyse. Veuillez réessayer."
	last := outcome.Conversation.Messages[len(outcome.Conversation.Messages)-1]
	if last.Content != expected {
		t.Errorf("placeholder = %q, expected the localized error text over the partial reply", last.Content)
	}

	if h.quota.charges != 0 {
		t.Errorf("quota charged %d times for a truncated stream, expected zero", h.quota.charges)
	}
	if h.store.saves != 1 {
		t.Errorf("store saved %d times, the failed exchange must still persist", h.store.saves)
	}
}

func TestSendPersistsAttachmentMetadata(t *testing.T) {
	h := newHarness()

	files := []ChatFile{{Data: "aGVsbG8=", MimeType: "application/pdf", Name: "avis-clients.pdf"}}
	outcome, err := h.controller.Send(context.Background(), h.log, "visitor-1", "Analyze this report", files, "en", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	user := outcome.Conversation.Messages[1]
	if len(user.Attachments) != 1 {
		t.Fatalf("user message has %d attachments, expected 1", len(user.Attachments))
	}
	if user.Attachments[0].Name != "avis-clients.pdf" || user.Attachments[0].MimeType != "application/pdf" {
		t.Errorf("attachment = %+v, expected name and mime type carried over", user.Attachments[0])
	}
	if len(h.chat.lastReq.Files) != 1 || h.chat.lastReq.Files[0].Data != "aGVsbG8=" {
		t.Error("outbound request lost the file content")
	}
}

func TestSendSkipsChargeForVIP(t *testing.T) {
	h := newHarness()
	h.quota.status = repository.QuotaStatus{Tier: platform.TierVIP}

	outcome, err := h.controller.Send(context.Background(), h.log, "visitor-1", "vip question", nil, "en", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if outcome.Blocked || outcome.Failed {
		t.Fatalf("VIP send blocked=%v failed=%v", outcome.Blocked, outcome.Failed)
	}
	if h.quota.charges != 0 {
		t.Errorf("quota charged %d times for VIP, expected zero", h.quota.charges)
	}
}

func TestSendRejectedWhileInFlight(t *testing.T) {
	h := newHarness()
	h.guard.held["visitor-1"] = true

	_, err := h.controller.Send(context.Background(), h.log, "visitor-1", "again", nil, "en", nil)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Send() error = %v, expected ErrBusy", err)
	}
	if h.store.saves != 0 || h.quota.charges != 0 {
		t.Error("rejected send touched quota or store")
	}
}

func TestSendDeltasKeyedToPlaceholderID(t *testing.T) {
	h := newHarness()

	var ids []string
	var contents []string
	outcome, err := h.controller.Send(context.Background(), h.log, "visitor-1", "stream it", nil, "en", func(messageID, content string) {
		ids = append(ids, messageID)
		contents = append(contents, content)
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(ids) == 0 {
		t.Fatal("no increments published")
	}
	for i, id := range ids {
		if id != outcome.MessageID {
			t.Errorf("increment %d keyed to %q, expected placeholder %q", i, id, outcome.MessageID)
		}
	}
	if contents[len(contents)-1] != "Here is the analysis." {
		t.Errorf("last increment = %q, expected the full content", contents[len(contents)-1])
	}
}

func TestSendNonStreamingPath(t *testing.T) {
	h := newHarness()
	config := harnessConfig()

	controller := NewController(h.quota, h.store, h.chat, NewCompactor(&fakeSummarizer{}, testMetrics(), config), h.guard, fakeTexts{}, fakeFeatures{features.FeatureStreaming: false}, config, h.log)

	outcome, err := controller.Send(context.Background(), h.log, "visitor-1", "no stream", nil, "en", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if outcome.Streamed {
		t.Error("outcome.Streamed = true with streaming disabled")
	}
	if outcome.Content != "non-streamed answer" {
		t.Errorf("Content = %q, expected the JSON response body", outcome.Content)
	}
	if h.chat.lastReq.Stream {
		t.Error("request.Stream = true with streaming disabled")
	}
}

func TestSendHistoryExcludesCurrentTurn(t *testing.T) {
	h := newHarness()

	_, err := h.controller.Send(context.Background(), h.log, "visitor-1", "first question", nil, "en", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(h.chat.lastReq.History) != 1 {
		t.Fatalf("history len = %d, expected only the welcome turn", len(h.chat.lastReq.History))
	}
	if h.chat.lastReq.History[0].Role != platform.MessageRoleAssistant {
		t.Errorf("history[0].Role = %s, expected the assistant welcome", h.chat.lastReq.History[0].Role)
	}
	if h.chat.lastReq.Message != "first question" {
		t.Errorf("request.Message = %q", h.chat.lastReq.Message)
	}
}

func TestResetSeedsWelcomeAndClearsPointer(t *testing.T) {
	h := newHarness()

	first, err := h.controller.Send(context.Background(), h.log, "visitor-1", "hello", nil, "en", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	fresh, err := h.controller.Reset(h.log, "visitor-1", "en")
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if h.store.active != "" {
		t.Errorf("active pointer = %q after reset, expected cleared", h.store.active)
	}
	if fresh.ID == first.Conversation.ID {
		t.Error("reset reused the previous conversation identity")
	}
	if len(fresh.Messages) != 1 || fresh.Messages[0].ID != WelcomeMessageID {
		t.Fatalf("fresh conversation = %d messages, expected the single welcome turn", len(fresh.Messages))
	}
	if fresh.SummarizedUpTo != 0 {
		t.Errorf("SummarizedUpTo = %d after reset, expected 0", fresh.SummarizedUpTo)
	}
	if _, saved := h.store.conversations[fresh.ID]; saved {
		t.Error("welcome-only conversation was persisted on reset")
	}
}

func TestSwitchReplacesStateWholesale(t *testing.T) {
	h := newHarness()

	stored := &repository.Conversation{
		ID:             "conv-7",
		Title:          "older chat",
		Messages:       messagesOf(14),
		Summary:        "old gist",
		SummarizedUpTo: 8,
	}
	h.store.conversations[stored.ID] = stored

	conversation, err := h.controller.Switch(h.log, "visitor-1", "conv-7")
	if err != nil {
		t.Fatalf("Switch() error = %v", err)
	}
	if conversation == nil {
		t.Fatal("Switch() returned nil for an existing conversation")
	}
	if h.store.active != "conv-7" {
		t.Errorf("active pointer = %q, expected conv-7", h.store.active)
	}
	if len(conversation.Messages) != 14 || conversation.Summary != "old gist" || conversation.SummarizedUpTo != 8 {
		t.Error("switch did not replace messages and compaction state wholesale")
	}

	missing, err := h.controller.Switch(h.log, "visitor-1", "no-such")
	if err != nil {
		t.Fatalf("Switch() error = %v", err)
	}
	if missing != nil {
		t.Error("Switch() returned a conversation for an unknown id")
	}
}

func TestSendTriggersCompactionBeforeAppend(t *testing.T) {
	h := newHarness()

	long := &repository.Conversation{
		ID:       "conv-long",
		Title:    "long one",
		Messages: messagesOf(15),
	}
	h.store.conversations[long.ID] = long
	h.store.active = long.ID

	outcome, err := h.controller.Send(context.Background(), h.log, "visitor-1", "continue", nil, "en", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	// watermark derives from the 15 pre-send messages: 15 - 6 = 9
	if outcome.Conversation.SummarizedUpTo != 9 {
		t.Errorf("SummarizedUpTo = %d, expected 9 evaluated before the new turn", outcome.Conversation.SummarizedUpTo)
	}
	if outcome.Conversation.Summary != "gist" {
		t.Errorf("Summary = %q, expected the fresh summary", outcome.Conversation.Summary)
	}
	if len(outcome.Conversation.Messages) != 17 {
		t.Errorf("messages len = %d, expected 15 + user + assistant", len(outcome.Conversation.Messages))
	}
}
