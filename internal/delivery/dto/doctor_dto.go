package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type UpdateDoctorProfileRequest struct {
	Specialization  string `json:"specialization" validate:"omitempty"`
	Biography       string `json:"biography" validate:"omitempty"`
	ConsultationFee string `json:"consultation_fee" validate:"omitempty"`
}

// Response DTOs

type DoctorProfileResponse struct {
	RegistrationNumber string          `json:"registration_number"`
	Specialization     string          `json:"specialization"`
	Biography          string          `json:"biography,omitempty"`
	ConsultationFee    decimal.Decimal `json:"consultation_fee"`
}

type DoctorResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Email              string          `json:"email"`
	FullName           string          `json:"full_name"`
	RegistrationNumber string          `json:"registration_number"`
	Specialization     string          `json:"specialization"`
	Biography          string          `json:"biography,omitempty"`
	ConsultationFee    decimal.Decimal `json:"consultation_fee"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
