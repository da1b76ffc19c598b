package repository

import (
	"time"

	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultationRepository interface {
	Create(db *gorm.DB, consultation *entity.Consultation) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error)
	FindActiveByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.Consultation, error)
	FindByStatus(db *gorm.DB, status entity.ConsultationStatus) ([]entity.Consultation, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Consultation, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Consultation, error)
	Accept(db *gorm.DB, id uuid.UUID, doctorID uuid.UUID, consultationDateTime time.Time) (int64, error)
	Reject(db *gorm.DB, id uuid.UUID) (int64, error)
	StartChat(db *gorm.DB, id uuid.UUID) (int64, error)
	EndChat(db *gorm.DB, id uuid.UUID) (int64, error)
}
