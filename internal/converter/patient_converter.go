package converter

import (
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
)

// PatientProfileToResponse converts a PatientProfile entity to its DTO
func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientProfileResponse {
	if profile == nil {
		return nil
	}

	return &dto.PatientProfileResponse{
		UserID:      profile.UserID,
		PhoneNumber: profile.PhoneNumber,
		DateOfBirth: profile.DateOfBirth.Format("2006-01-02"),
		Gender:      profile.Gender,
		Address:     profile.Address,
	}
}

// PatientProfileToSummary builds the denormalized patient view embedded in
// consultation responses
func PatientProfileToSummary(profile *entity.PatientProfile) *dto.PatientSummary {
	if profile == nil {
		return nil
	}

	return &dto.PatientSummary{
		UserID:      profile.UserID,
		FullName:    profile.User.FullName,
		Gender:      profile.Gender,
		DateOfBirth: profile.DateOfBirth.Format("2006-01-02"),
	}
}
