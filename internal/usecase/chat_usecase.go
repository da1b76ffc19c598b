package usecase

import (
	"context"
	"errors"

	"telehealth-backend/internal/converter"
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/domain/repository"
	"telehealth-backend/internal/identity"
	"telehealth-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotParticipant = errors.New("only the assigned doctor or the patient can access this chat")
	ErrEmptyMessage   = errors.New("message needs content or a file attachment")
)

// ChatUsecase owns the append-only message log attached to a consultation.
// Messages are appended only while the chat is open and are never modified
// or deleted; the history stays readable to both participants after the
// chat ends.
type ChatUsecase interface {
	SendMessage(ctx context.Context, caller identity.Caller, consultationID uuid.UUID, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error)
	GetMessages(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) (*dto.ChatMessageListResponse, error)
}

type chatUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	messageRepo      repository.ChatMessageRepository
	auditService     service.AuditService
}

func NewChatUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	messageRepo repository.ChatMessageRepository,
	auditService service.AuditService,
) ChatUsecase {
	return &chatUsecase{
		db:               db,
		log:              log,
		consultationRepo: consultationRepo,
		messageRepo:      messageRepo,
		auditService:     auditService,
	}
}

// SendMessage appends one message to the consultation's log. The caller
// must be the assigned doctor or the consultation's patient, and the chat
// must be open (consultation accepted, not ended).
func (u *chatUsecase) SendMessage(ctx context.Context, caller identity.Caller, consultationID uuid.UUID, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error) {
	db := u.db.WithContext(ctx)

	consultation, err := u.consultationRepo.FindByID(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	if err := authorizeParticipant(caller, consultation); err != nil {
		return nil, err
	}

	if !consultation.ChatIsOpen() {
		return nil, ErrChatNotActive
	}

	if req.Content == "" && req.FileURL == "" {
		return nil, ErrEmptyMessage
	}

	message := &entity.ChatMessage{
		ConsultationID: consultationID,
		SenderID:       caller.UserID,
		Content:        req.Content,
	}
	if req.FileURL != "" {
		message.FileURL = &req.FileURL
		message.FileName = &req.FileName
		message.FileType = &req.FileType
	}

	if err := u.messageRepo.Create(db, message); err != nil {
		u.log.Warnf("Failed to create chat message: %+v", err)
		return nil, err
	}

	userID := caller.UserID
	metadata := entity.JSON{
		"consultation_id": consultationID.String(),
		"message_id":      message.ID.String(),
	}
	if err := u.auditService.Record(ctx, db, &userID, entity.AuditActionMessageSend, metadata); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return converter.ChatMessageToResponse(message), nil
}

// GetMessages returns the full log in creation order. It uses the same
// participant predicate as SendMessage but does not require the chat to be
// open, so history stays readable after the chat ends.
func (u *chatUsecase) GetMessages(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) (*dto.ChatMessageListResponse, error) {
	db := u.db.WithContext(ctx)

	consultation, err := u.consultationRepo.FindByID(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	if err := authorizeParticipant(caller, consultation); err != nil {
		return nil, err
	}

	messages, err := u.messageRepo.FindByConsultationID(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find messages for consultation %s: %+v", consultationID, err)
		return nil, err
	}

	return &dto.ChatMessageListResponse{
		Messages: converter.ChatMessagesToResponses(messages),
		Total:    len(messages),
	}, nil
}

// authorizeParticipant admits exactly two callers: the doctor assigned to
// the consultation, and the consultation's own patient.
func authorizeParticipant(caller identity.Caller, consultation *entity.Consultation) error {
	switch caller.Kind {
	case identity.KindDoctor:
		if !consultation.IsAssignedDoctor(caller.UserID) {
			return ErrNotParticipant
		}
	case identity.KindPatient:
		if consultation.PatientID != caller.UserID {
			return ErrNotParticipant
		}
	default:
		return ErrNotParticipant
	}
	return nil
}
