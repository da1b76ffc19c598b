package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConsultationStatus represents the status of a consultation request
type ConsultationStatus string

const (
	ConsultationStatusPending   ConsultationStatus = "pending"
	ConsultationStatusAccepted  ConsultationStatus = "accepted"
	ConsultationStatusRejected  ConsultationStatus = "rejected"
	ConsultationStatusCompleted ConsultationStatus = "completed"
)

// ChatState represents the lifecycle of the chat attached to a consultation.
// A chat can be opened for messaging only while the consultation is accepted;
// once ended it never reopens.
type ChatState string

const (
	ChatStateNotStarted ChatState = "not_started"
	ChatStateActive     ChatState = "active"
	ChatStateEnded      ChatState = "ended"
)

// Consultation tracks a patient's request for doctor review through
// acceptance, scheduling and the chat lifecycle. Rows are never deleted.
type Consultation struct {
	ID                   uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID            uuid.UUID          `gorm:"type:uuid;not null;index" json:"patient_id"`
	SenderUserID         uuid.UUID          `gorm:"type:uuid;not null" json:"sender_user_id"`
	Status               ConsultationStatus `gorm:"type:consultation_status;not null;default:'pending';index" json:"status"`
	AcceptedByDoctorID   *uuid.UUID         `gorm:"type:uuid;index" json:"accepted_by_doctor_id,omitempty"`
	ConsultationDateTime *time.Time         `json:"consultation_date_time,omitempty"`
	ChatState            ChatState          `gorm:"type:chat_state;not null;default:'not_started'" json:"chat_state"`
	ReportPreview        *ReportPreview     `gorm:"type:jsonb" json:"report_preview,omitempty"`
	CreatedAt            time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient          PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	AcceptedByDoctor *DoctorProfile `gorm:"foreignKey:AcceptedByDoctorID" json:"accepted_by_doctor,omitempty"`
	Messages         []ChatMessage  `gorm:"foreignKey:ConsultationID" json:"messages,omitempty"`
}

func (Consultation) TableName() string {
	return "consultations"
}

// IsPending checks if the request has not been handled yet
func (c *Consultation) IsPending() bool {
	return c.Status == ConsultationStatusPending
}

// IsAccepted checks if the request was accepted by a doctor
func (c *Consultation) IsAccepted() bool {
	return c.Status == ConsultationStatusAccepted
}

// IsActive reports whether the consultation still occupies the patient's
// single active-request slot (pending or accepted).
func (c *Consultation) IsActive() bool {
	return c.Status == ConsultationStatusPending || c.Status == ConsultationStatusAccepted
}

// ChatIsOpen reports whether messages may be appended. The chat opens at
// acceptance and closes for good when the assigned doctor ends it.
func (c *Consultation) ChatIsOpen() bool {
	return c.Status == ConsultationStatusAccepted && c.ChatState != ChatStateEnded
}

// IsAssignedDoctor checks whether the given doctor accepted this consultation
func (c *Consultation) IsAssignedDoctor(doctorID uuid.UUID) bool {
	return c.AcceptedByDoctorID != nil && *c.AcceptedByDoctorID == doctorID
}

// ReportPreview is the AI-generated clinical summary snapshotted onto a
// consultation at creation time. Immutable once stored.
type ReportPreview struct {
	Overview              string `json:"overview,omitempty"`
	Considerations        string `json:"considerations,omitempty"`
	LabFindings           string `json:"lab_findings,omitempty"`
	DifferentialDiagnosis string `json:"differential_diagnosis,omitempty"`
	Recommendations       string `json:"recommendations,omitempty"`
	Conclusion            string `json:"conclusion,omitempty"`
}

// Value returns json value, implement driver.Valuer interface
func (p ReportPreview) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan scan value into the preview struct, implements sql.Scanner interface
func (p *ReportPreview) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, p)
}
