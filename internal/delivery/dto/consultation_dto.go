package dto

import (
	"time"

	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type CreateConsultationRequest struct {
	PatientID     uuid.UUID             `json:"patient_id" validate:"required"`
	ReportPreview *entity.ReportPreview `json:"report_preview" validate:"omitempty"`
}

type AcceptConsultationRequest struct {
	ConsultationDateTime string `json:"consultation_date_time" validate:"required"` // Format: RFC 3339
}

// Response DTOs

type ConsultationResponse struct {
	ID                   uuid.UUID             `json:"id"`
	PatientID            uuid.UUID             `json:"patient_id"`
	SenderUserID         uuid.UUID             `json:"sender_user_id"`
	Status               string                `json:"status"`
	AcceptedByDoctorID   *uuid.UUID            `json:"accepted_by_doctor_id,omitempty"`
	ConsultationDateTime *time.Time            `json:"consultation_date_time,omitempty"`
	ChatState            string                `json:"chat_state"`
	ReportPreview        *entity.ReportPreview `json:"report_preview,omitempty"`
	Patient              *PatientSummary       `json:"patient,omitempty"`
	Doctor               *DoctorResponse       `json:"doctor,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

type ConsultationListResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	Total         int                    `json:"total"`
}
