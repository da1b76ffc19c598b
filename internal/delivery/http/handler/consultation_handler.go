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

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	resolver            identity.Resolver
	validator           *validator.CustomValidator
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, resolver identity.Resolver, validator *validator.CustomValidator) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		resolver:            resolver,
		validator:           validator,
	}
}

// Create handles creating a consultation request
// @Summary Create consultation request
// @Description Create a pending consultation request for a patient
// @Tags Consultations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateConsultationRequest true "Create Consultation Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /consultations [post]
func (h *ConsultationHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	var req dto.CreateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.CreateRequest(r.Context(), caller, &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to create consultation request")
		}
		return
	}

	// A patient with a pending or accepted request gets a no-op instead of
	// a duplicate.
	if consultation == nil {
		response.Success(w, http.StatusOK, "An active consultation request already exists", nil)
		return
	}

	response.Success(w, http.StatusCreated, "Consultation request created successfully", consultation)
}

// Accept handles a doctor accepting a pending request
// @Summary Accept consultation request
// @Description Accept a pending consultation request and schedule it
// @Tags Consultations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Consultation ID"
// @Param request body dto.AcceptConsultationRequest true "Accept Consultation Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/accept [post]
func (h *ConsultationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	consultationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	var req dto.AcceptConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.Accept(r.Context(), caller, consultationID, &req)
	if err != nil {
		h.writeTransitionError(w, err, "Failed to accept consultation request")
		return
	}

	response.Success(w, http.StatusOK, "Consultation request accepted successfully", consultation)
}

// Reject handles a doctor rejecting a pending request
// @Summary Reject consultation request
// @Description Reject a pending consultation request
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/reject [post]
func (h *ConsultationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	consultationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	if err := h.consultationUsecase.Reject(r.Context(), caller, consultationID); err != nil {
		h.writeTransitionError(w, err, "Failed to reject consultation request")
		return
	}

	response.Success(w, http.StatusOK, "Consultation request rejected successfully", nil)
}

// StartChat handles the assigned doctor opening the chat
// @Summary Start consultation chat
// @Description Mark the consultation chat as started
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/chat/start [post]
func (h *ConsultationHandler) StartChat(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	consultationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	if err := h.consultationUsecase.StartChat(r.Context(), caller, consultationID); err != nil {
		h.writeTransitionError(w, err, "Failed to start chat")
		return
	}

	response.Success(w, http.StatusOK, "Chat started successfully", nil)
}

// EndChat handles the assigned doctor closing the chat
// @Summary End consultation chat
// @Description End the chat and complete the consultation
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/chat/end [post]
func (h *ConsultationHandler) EndChat(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	consultationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	if err := h.consultationUsecase.EndChat(r.Context(), caller, consultationID); err != nil {
		h.writeTransitionError(w, err, "Failed to end chat")
		return
	}

	response.Success(w, http.StatusOK, "Chat ended successfully", nil)
}

// GetDetails handles getting a single consultation
// @Summary Get consultation details
// @Description Get a consultation by ID, null when it does not exist
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /consultations/{id} [get]
func (h *ConsultationHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	consultationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	consultation, err := h.consultationUsecase.GetDetails(r.Context(), caller, consultationID)
	if err != nil {
		response.InternalServerError(w, "Failed to get consultation details")
		return
	}

	if consultation == nil {
		response.Success(w, http.StatusOK, "Consultation not found", nil)
		return
	}

	response.Success(w, http.StatusOK, "Consultation retrieved successfully", consultation)
}

// GetPending handles listing pending requests for doctors
// @Summary List pending consultation requests
// @Description List all consultation requests waiting for a doctor
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /consultations/pending [get]
func (h *ConsultationHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	consultations, err := h.consultationUsecase.GetPendingRequests(r.Context(), caller)
	if err != nil {
		switch err {
		case usecase.ErrCallerNotDoctor:
			response.Forbidden(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to get pending requests")
		}
		return
	}

	response.Success(w, http.StatusOK, "Pending requests retrieved successfully", consultations)
}

// GetMine handles listing the caller's own consultations
// @Summary List my consultations
// @Description List consultations belonging to the authenticated user
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /consultations/me [get]
func (h *ConsultationHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := resolveCaller(w, r, h.resolver)
	if !ok {
		return
	}

	consultations, err := h.consultationUsecase.GetMyConsultations(r.Context(), caller)
	if err != nil {
		response.InternalServerError(w, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

func (h *ConsultationHandler) writeTransitionError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrConsultationNotFound:
		response.NotFound(w, "Consultation not found")
	case usecase.ErrCallerNotDoctor, usecase.ErrNotAssignedDoctor:
		response.Forbidden(w, err.Error())
	case usecase.ErrRequestAlreadyHandled, usecase.ErrChatNotStarted, usecase.ErrChatNotActive:
		response.Conflict(w, err.Error())
	case usecase.ErrInvalidDateTimeFormat:
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
