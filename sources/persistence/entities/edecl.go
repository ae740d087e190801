package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type (
	// Exchange is one completed advisor round trip, kept for usage accounting.
	Exchange struct {
		ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		SessionID      string          `gorm:"size:64;not null;index" json:"session_id"`
		ConversationID string          `gorm:"size:64;not null" json:"conversation_id"`
		Model          string          `gorm:"size:128;not null" json:"model"`
		Locale         string          `gorm:"size:8;not null" json:"locale"`
		Tier           string          `gorm:"size:16;not null" json:"tier"`
		PromptTokens   int             `gorm:"not null;default:0" json:"prompt_tokens"`
		ResponseTokens int             `gorm:"not null;default:0" json:"response_tokens"`
		Cost           decimal.Decimal `gorm:"type:decimal(10,6);not null;default:0" json:"cost"`
		Streamed       bool            `gorm:"not null;default:true" json:"streamed"`
		CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	}

	Feedback struct {
		ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
		SessionID      string    `gorm:"size:64;not null;index" json:"session_id"`
		ConversationID string    `gorm:"size:64;not null" json:"conversation_id"`
		MessageID      string    `gorm:"size:64;not null" json:"message_id"`
		Helpful        bool      `gorm:"not null" json:"helpful"`
		Comment        *string   `gorm:"type:text" json:"comment"`
		CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	}
)

func (Exchange) TableName() string { return "sb_exchanges" }
func (Feedback) TableName() string { return "sb_feedbacks" }
