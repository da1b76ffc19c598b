package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile represents doctor-specific profile data
type DoctorProfile struct {
	UserID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	RegistrationNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"registration_number"`
	Specialization     string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Biography          string          `gorm:"type:text" json:"biography,omitempty"`
	ConsultationFee    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"consultation_fee"`

	// Relationships
	User          User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Consultations []Consultation `gorm:"foreignKey:AcceptedByDoctorID" json:"consultations,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}
