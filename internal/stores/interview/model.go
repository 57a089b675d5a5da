package interviewstore

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voicehire/interview-server/internal/interview"
)

// Record is one finished interview as persisted. Only terminal interviews
// are saved; in-flight transcripts live with the client.
type Record struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`

	JobTitle      string      `json:"jobTitle" gorm:"size:255"`
	ResumeSummary string      `json:"resume_summary" gorm:"type:text"`
	Feedback      string      `json:"feedback" gorm:"type:text"`
	Score         *int        `json:"score"`
	Messages      MessageList `json:"messages" gorm:"type:json"`
}

// TableName specifies the database table name for GORM
func (*Record) TableName() string {
	return "interviews"
}

// MessageList stores the transcript as a JSON column.
type MessageList []interview.Message

// Value implements driver.Valuer for GORM serialization.
func (m MessageList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]interview.Message(m))
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for GORM deserialization.
func (m *MessageList) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported messages column type %T", value)
	}

	var messages []interview.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("unmarshal messages: %w", err)
	}
	*m = messages
	return nil
}
