package repository

import (
	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageRepository interface {
	Create(db *gorm.DB, message *entity.ChatMessage) error
	FindByConsultationID(db *gorm.DB, consultationID uuid.UUID) ([]entity.ChatMessage, error)
}
