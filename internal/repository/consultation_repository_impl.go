package repository

import (
	"errors"
	"time"

	"telehealth-backend/internal/domain/entity"
	domainRepo "telehealth-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type consultationRepository struct{}

func NewConsultationRepository() domainRepo.ConsultationRepository {
	return &consultationRepository{}
}

func (r *consultationRepository) Create(db *gorm.DB, consultation *entity.Consultation) error {
	return db.Create(consultation).Error
}

func (r *consultationRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := db.Preload("Patient.User").Preload("AcceptedByDoctor.User").
		Where("id = ?", id).
		First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) FindActiveByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := db.Where("patient_id = ? AND status IN ?", patientID,
		[]entity.ConsultationStatus{entity.ConsultationStatusPending, entity.ConsultationStatusAccepted}).
		First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) FindByStatus(db *gorm.DB, status entity.ConsultationStatus) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := db.Preload("Patient.User").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := db.Preload("AcceptedByDoctor.User").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := db.Preload("Patient.User").
		Where("accepted_by_doctor_id = ?", doctorID).
		Order("created_at DESC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

// Accept atomically moves a pending consultation to accepted.
// Returns affected rows: 1 = success, 0 = request already handled
// (prevents a double-accept race).
func (r *consultationRepository) Accept(db *gorm.DB, id uuid.UUID, doctorID uuid.UUID, consultationDateTime time.Time) (int64, error) {
	result := db.Model(&entity.Consultation{}).
		Where("id = ? AND status = ?", id, entity.ConsultationStatusPending).
		Updates(map[string]interface{}{
			"status":                 entity.ConsultationStatusAccepted,
			"accepted_by_doctor_id":  doctorID,
			"consultation_date_time": consultationDateTime,
		})
	return result.RowsAffected, result.Error
}

// Reject atomically moves a pending consultation to rejected.
func (r *consultationRepository) Reject(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Consultation{}).
		Where("id = ? AND status = ?", id, entity.ConsultationStatusPending).
		Update("status", entity.ConsultationStatusRejected)
	return result.RowsAffected, result.Error
}

// StartChat marks the chat active while the consultation is accepted.
// Repeating the update on an already-active chat is harmless.
func (r *consultationRepository) StartChat(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Consultation{}).
		Where("id = ? AND status = ? AND chat_state <> ?", id,
			entity.ConsultationStatusAccepted, entity.ChatStateEnded).
		Update("chat_state", entity.ChatStateActive)
	return result.RowsAffected, result.Error
}

// EndChat is the terminal transition: chat_state active -> ended together
// with status accepted -> completed, in one conditional update.
func (r *consultationRepository) EndChat(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Consultation{}).
		Where("id = ? AND status = ? AND chat_state = ?", id,
			entity.ConsultationStatusAccepted, entity.ChatStateActive).
		Updates(map[string]interface{}{
			"status":     entity.ConsultationStatusCompleted,
			"chat_state": entity.ChatStateEnded,
		})
	return result.RowsAffected, result.Error
}
