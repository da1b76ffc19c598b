package handler

import (
	"encoding/json"
	"net/http"

	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/identity"
	"telehealth-backend/internal/usecase"
	"telehealth-backend/pkg/response"
	"telehealth-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
	resolver    identity.Resolver
	validator   *validator.CustomValidator
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, resolver identity.Resolver, validator *validator.CustomValidator) *ChatHandler {
	return &ChatHandler{
		chatUsecase: chatUsecase,
		resolver:    resolver,
		validator:   validator,
	}
}

// SendMessage handles sending a chat message
// @Summary Send chat message
// @Description Send a message in the consultation chat
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Consultation ID"
// @Param request body dto.SendMessageRequest true "Send Message Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/messages [post]
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	consultationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	var req dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	message, err := h.chatUsecase.SendMessage(r.Context(), caller, consultationID, &req)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		case usecase.ErrNotParticipant:
			response.Forbidden(w, err.Error())
		case usecase.ErrChatNotActive:
			response.Conflict(w, err.Error())
		case usecase.ErrEmptyMessage:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to send message")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Message sent successfully", message)
}

// GetMessages handles listing chat messages
// @Summary List chat messages
// @Description List all messages of a consultation chat in send order
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /consultations/{id}/messages [get]
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	consultationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	messages, err := h.chatUsecase.GetMessages(r.Context(), caller, consultationID)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		case usecase.ErrNotParticipant:
			response.Forbidden(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to get messages")
		}
		return
	}

	response.Success(w, http.StatusOK, "Messages retrieved successfully", messages)
}
