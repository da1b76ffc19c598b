package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// SendMessageRequest carries one chat message. Content may be empty only
// when a file attachment descriptor is present; the file itself is uploaded
// elsewhere and referenced by URL.
type SendMessageRequest struct {
	Content  string `json:"content" validate:"omitempty"`
	FileURL  string `json:"file_url" validate:"omitempty,url"`
	FileName string `json:"file_name" validate:"omitempty,max=255"`
	FileType string `json:"file_type" validate:"omitempty,max=100"`
}

// Response DTOs

type ChatMessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConsultationID uuid.UUID `json:"consultation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	Content        string    `json:"content"`
	FileURL        *string   `json:"file_url,omitempty"`
	FileName       *string   `json:"file_name,omitempty"`
	FileType       *string   `json:"file_type,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ChatMessageListResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
	Total    int                   `json:"total"`
}
