package identity

import (
	"context"

	"telehealth-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolver maps an authenticated user id to a Caller.
type Resolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (Caller, error)
}

type resolver struct {
	db                 *gorm.DB
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
}

func NewResolver(
	db *gorm.DB,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
) Resolver {
	return &resolver{
		db:                 db,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
	}
}

// Resolve looks up the doctor profile first, then the patient profile.
// A user with neither resolves to KindUnknown rather than an error; the
// operations decide whether an unknown caller is acceptable.
func (r *resolver) Resolve(ctx context.Context, userID uuid.UUID) (Caller, error) {
	doctor, err := r.doctorProfileRepo.FindByUserID(r.db.WithContext(ctx), userID)
	if err != nil {
		return Caller{}, err
	}
	if doctor != nil {
		return Caller{UserID: userID, Kind: KindDoctor}, nil
	}

	patient, err := r.patientProfileRepo.FindByUserID(r.db.WithContext(ctx), userID)
	if err != nil {
		return Caller{}, err
	}
	if patient != nil {
		return Caller{UserID: userID, Kind: KindPatient}, nil
	}

	return Caller{UserID: userID, Kind: KindUnknown}, nil
}
