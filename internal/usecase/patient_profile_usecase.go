package usecase

import (
	"context"

	"telehealth-backend/internal/converter"
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/domain/repository"
	"telehealth-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PatientProfileUsecase interface {
	GetPatient(ctx context.Context, userID uuid.UUID) (*dto.PatientProfileResponse, error)
	UpdateSelfProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error)
}

type patientProfileUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewPatientProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:                 db,
		log:                log,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

func (u *patientProfileUsecase) GetPatient(ctx context.Context, userID uuid.UUID) (*dto.PatientProfileResponse, error) {
	profile, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientProfileToResponse(profile), nil
}

func (u *patientProfileUsecase) UpdateSelfProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error) {
	db := u.db.WithContext(ctx)

	profile, err := u.patientProfileRepo.FindByUserID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	if req.PhoneNumber != "" {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		profile.Address = req.Address
	}

	if err := u.patientProfileRepo.Update(db, profile); err != nil {
		u.log.Warnf("Failed to update patient profile: %+v", err)
		return nil, err
	}

	metadata := entity.JSON{"profile": "patient", "user_id": userID.String()}
	if err := u.auditService.Record(ctx, db, &userID, entity.AuditActionProfileUpdate, metadata); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return converter.PatientProfileToResponse(profile), nil
}
