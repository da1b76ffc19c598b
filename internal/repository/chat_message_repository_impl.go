package repository

import (
	"telehealth-backend/internal/domain/entity"
	domainRepo "telehealth-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type chatMessageRepository struct{}

func NewChatMessageRepository() domainRepo.ChatMessageRepository {
	return &chatMessageRepository{}
}

func (r *chatMessageRepository) Create(db *gorm.DB, message *entity.ChatMessage) error {
	return db.Create(message).Error
}

// FindByConsultationID returns the full message log in creation order.
// Same-timestamp ties break on the random id column, so their relative
// order is arbitrary but stable across reads.
func (r *chatMessageRepository) FindByConsultationID(db *gorm.DB, consultationID uuid.UUID) ([]entity.ChatMessage, error) {
	var messages []entity.ChatMessage
	err := db.Preload("Sender").
		Where("consultation_id = ?", consultationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
