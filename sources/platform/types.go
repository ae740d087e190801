package platform

type QuotaTier = string

const (
	TierDiscovery QuotaTier = "discovery"
	TierPartner   QuotaTier = "partner"
	TierVIP       QuotaTier = "vip"
)

type MessageRole = string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// WireMessage is the role/content pair that crosses every boundary of the
// service: conversation blobs in Redis, history payloads to the advisor and
// summarize requests.
type WireMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}
