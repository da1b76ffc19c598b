package converter

import (
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// ConsultationToResponse converts a Consultation entity to its DTO.
// Patient and doctor views are included only when the relations are loaded.
func ConsultationToResponse(consultation *entity.Consultation) *dto.ConsultationResponse {
	if consultation == nil {
		return nil
	}

	response := &dto.ConsultationResponse{
		ID:                   consultation.ID,
		PatientID:            consultation.PatientID,
		SenderUserID:         consultation.SenderUserID,
		Status:               string(consultation.Status),
		AcceptedByDoctorID:   consultation.AcceptedByDoctorID,
		ConsultationDateTime: consultation.ConsultationDateTime,
		ChatState:            string(consultation.ChatState),
		ReportPreview:        consultation.ReportPreview,
		CreatedAt:            consultation.CreatedAt,
		UpdatedAt:            consultation.UpdatedAt,
	}

	if consultation.Patient.UserID != uuid.Nil {
		response.Patient = PatientProfileToSummary(&consultation.Patient)
	}

	if consultation.AcceptedByDoctor != nil {
		response.Doctor = DoctorProfileToResponse(consultation.AcceptedByDoctor)
	}

	return response
}

// ConsultationsToResponses converts a slice of Consultation entities to DTOs
func ConsultationsToResponses(consultations []entity.Consultation) []dto.ConsultationResponse {
	responses := make([]dto.ConsultationResponse, len(consultations))
	for i, consultation := range consultations {
		resp := ConsultationToResponse(&consultation)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
