package usecase

import (
	"context"
	"errors"

	"telehealth-backend/internal/converter"
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/domain/repository"
	"telehealth-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrDoctorNotFound = errors.New("doctor not found")

type DoctorProfileUsecase interface {
	GetDoctor(ctx context.Context, userID uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	UpdateSelfProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
	}
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, userID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find doctor profiles: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorProfilesToResponses(profiles),
		Total:   len(profiles),
	}, nil
}

// UpdateSelfProfile lets a doctor edit the presentational parts of their
// own profile. The registration number is immutable.
func (u *doctorProfileUsecase) UpdateSelfProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error) {
	db := u.db.WithContext(ctx)

	profile, err := u.doctorProfileRepo.FindByUserID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	if req.Specialization != "" {
		profile.Specialization = req.Specialization
	}
	if req.Biography != "" {
		profile.Biography = req.Biography
	}
	if req.ConsultationFee != "" {
		fee, err := decimal.NewFromString(req.ConsultationFee)
		if err != nil || fee.IsNegative() {
			return nil, ErrInvalidConsultationFee
		}
		profile.ConsultationFee = fee
	}

	if err := u.doctorProfileRepo.Update(db, profile); err != nil {
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}

	metadata := entity.JSON{"profile": "doctor", "user_id": userID.String()}
	if err := u.auditService.Record(ctx, db, &userID, entity.AuditActionProfileUpdate, metadata); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return converter.DoctorProfileToResponse(profile), nil
}
