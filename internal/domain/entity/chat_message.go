package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one entry in a consultation's append-only message log.
// Messages are never updated or deleted after insert.
type ChatMessage struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConsultationID uuid.UUID `gorm:"type:uuid;not null;index" json:"consultation_id"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	FileURL        *string   `gorm:"type:text" json:"file_url,omitempty"`
	FileName       *string   `gorm:"type:varchar(255)" json:"file_name,omitempty"`
	FileType       *string   `gorm:"type:varchar(100)" json:"file_type,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Consultation Consultation `gorm:"foreignKey:ConsultationID" json:"consultation,omitempty"`
	Sender       User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// HasAttachment reports whether the message carries a file descriptor
func (m *ChatMessage) HasAttachment() bool {
	return m.FileURL != nil && *m.FileURL != ""
}
