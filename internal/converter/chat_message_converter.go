package converter

import (
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
)

// ChatMessageToResponse converts a ChatMessage entity to its DTO
func ChatMessageToResponse(message *entity.ChatMessage) *dto.ChatMessageResponse {
	if message == nil {
		return nil
	}

	return &dto.ChatMessageResponse{
		ID:             message.ID,
		ConsultationID: message.ConsultationID,
		SenderID:       message.SenderID,
		SenderName:     message.Sender.FullName,
		Content:        message.Content,
		FileURL:        message.FileURL,
		FileName:       message.FileName,
		FileType:       message.FileType,
		CreatedAt:      message.CreatedAt,
	}
}

// ChatMessagesToResponses converts a slice of ChatMessage entities to DTOs
func ChatMessagesToResponses(messages []entity.ChatMessage) []dto.ChatMessageResponse {
	responses := make([]dto.ChatMessageResponse, len(messages))
	for i, message := range messages {
		resp := ChatMessageToResponse(&message)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
