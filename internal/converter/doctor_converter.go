package converter

import (
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
)

// DoctorProfileToResponse converts a DoctorProfile entity to DoctorResponse DTO
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:                 profile.UserID,
		Email:              profile.User.Email,
		FullName:           profile.User.FullName,
		RegistrationNumber: profile.RegistrationNumber,
		Specialization:     profile.Specialization,
		Biography:          profile.Biography,
		ConsultationFee:    profile.ConsultationFee,
	}
}

// DoctorProfilesToResponses converts a slice of DoctorProfile entities to DTOs
func DoctorProfilesToResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i, profile := range profiles {
		resp := DoctorProfileToResponse(&profile)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
