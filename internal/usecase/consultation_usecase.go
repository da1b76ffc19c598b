package usecase

import (
	"context"
	"errors"
	"time"

	"telehealth-backend/internal/converter"
	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/domain/repository"
	"telehealth-backend/internal/identity"
	"telehealth-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrConsultationNotFound  = errors.New("consultation not found")
	ErrPatientNotFound       = errors.New("patient profile not found")
	ErrCallerNotDoctor       = errors.New("only a doctor can perform this action")
	ErrNotAssignedDoctor     = errors.New("only the assigned doctor can manage the chat")
	ErrRequestAlreadyHandled = errors.New("request already handled")
	ErrChatNotStarted        = errors.New("chat has not been started")
	ErrChatNotActive         = errors.New("chat is not active")
	ErrInvalidDateTimeFormat = errors.New("invalid consultation date time, use RFC 3339")
)

// ConsultationUsecase owns the consultation status state machine.
//
//	pending -> accepted -> completed
//	pending -> rejected
//
// rejected and completed are terminal. Every transition takes the resolved
// caller explicitly and checks its relationship to the target consultation.
type ConsultationUsecase interface {
	CreateRequest(ctx context.Context, caller identity.Caller, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error)
	Accept(ctx context.Context, caller identity.Caller, consultationID uuid.UUID, req *dto.AcceptConsultationRequest) (*dto.ConsultationResponse, error)
	Reject(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) error
	StartChat(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) error
	EndChat(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) error
	GetDetails(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) (*dto.ConsultationResponse, error)
	GetPendingRequests(ctx context.Context, caller identity.Caller) (*dto.ConsultationListResponse, error)
	GetMyConsultations(ctx context.Context, caller identity.Caller) (*dto.ConsultationListResponse, error)
}

type consultationUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	consultationRepo   repository.ConsultationRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewConsultationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) ConsultationUsecase {
	return &consultationUsecase{
		db:                 db,
		log:                log,
		consultationRepo:   consultationRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

// CreateRequest opens a new pending consultation for a patient. A patient
// may hold at most one active (pending or accepted) request at a time; a
// second create while one is active is a no-op and returns nil without an
// error, so callers can tell "already requested" apart from a failure.
func (u *consultationUsecase) CreateRequest(ctx context.Context, caller identity.Caller, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	db := u.db.WithContext(ctx)

	// Validate the target patient profile exists
	patient, err := u.patientProfileRepo.FindByUserID(db, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	// Dedup guard: one active request per patient. Check-then-insert; two
	// interleaved creates for the same patient can both pass the check,
	// which the store-level atomicity does not cover.
	existing, err := u.consultationRepo.FindActiveByPatientID(db, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to check active consultation for patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if existing != nil {
		u.log.Infof("Consultation request skipped, patient %s already has an active request %s", req.PatientID, existing.ID)
		return nil, nil
	}

	consultation := &entity.Consultation{
		PatientID:     req.PatientID,
		SenderUserID:  caller.UserID,
		Status:        entity.ConsultationStatusPending,
		ChatState:     entity.ChatStateNotStarted,
		ReportPreview: req.ReportPreview,
	}

	if err := u.consultationRepo.Create(db, consultation); err != nil {
		// A racing create for the same patient trips the partial unique
		// index; treat it like the dedup check above
		if isDuplicateKeyError(err, "idx_consultations_patient_active") {
			u.log.Infof("Consultation request skipped, patient %s gained an active request concurrently", req.PatientID)
			return nil, nil
		}
		u.log.Warnf("Failed to create consultation: %+v", err)
		return nil, err
	}

	u.recordAudit(ctx, caller, entity.AuditActionConsultationCreate, consultation.ID)

	u.log.Infof("Consultation created: id=%s, patient=%s", consultation.ID, req.PatientID)
	return converter.ConsultationToResponse(consultation), nil
}

// Accept moves a pending consultation to accepted, assigning the calling
// doctor and the appointment time in the same update. The doctor id is
// derived from the resolved caller, never from the request body.
func (u *consultationUsecase) Accept(ctx context.Context, caller identity.Caller, consultationID uuid.UUID, req *dto.AcceptConsultationRequest) (*dto.ConsultationResponse, error) {
	if !caller.IsDoctor() {
		return nil, ErrCallerNotDoctor
	}

	consultationDateTime, err := time.Parse(time.RFC3339, req.ConsultationDateTime)
	if err != nil {
		return nil, ErrInvalidDateTimeFormat
	}

	db := u.db.WithContext(ctx)

	consultation, err := u.consultationRepo.FindByID(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	// Conditional update: only one accept can win, concurrent calls see
	// zero affected rows.
	affected, err := u.consultationRepo.Accept(db, consultationID, caller.UserID, consultationDateTime)
	if err != nil {
		u.log.Warnf("Failed to accept consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrRequestAlreadyHandled
	}

	u.recordAudit(ctx, caller, entity.AuditActionConsultationAccept, consultationID)

	u.log.Infof("Consultation accepted: id=%s, doctor=%s, at=%s", consultationID, caller.UserID, consultationDateTime)

	accepted, err := u.consultationRepo.FindByID(db, consultationID)
	if err != nil || accepted == nil {
		// The transition itself succeeded; apply the won update to the
		// earlier read instead of returning its stale pending snapshot
		u.log.Warnf("Failed to reload consultation %s: %+v", consultationID, err)
		doctorID := caller.UserID
		consultation.Status = entity.ConsultationStatusAccepted
		consultation.AcceptedByDoctorID = &doctorID
		consultation.ConsultationDateTime = &consultationDateTime
		return converter.ConsultationToResponse(consultation), nil
	}
	return converter.ConsultationToResponse(accepted), nil
}

// Reject moves a pending consultation to the terminal rejected status.
func (u *consultationUsecase) Reject(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) error {
	if !caller.IsDoctor() {
		return ErrCallerNotDoctor
	}

	db := u.db.WithContext(ctx)

	consultation, err := u.consultationRepo.FindByID(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return err
	}
	if consultation == nil {
		return ErrConsultationNotFound
	}

	affected, err := u.consultationRepo.Reject(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to reject consultation %s: %+v", consultationID, err)
		return err
	}
	if affected == 0 {
		return ErrRequestAlreadyHandled
	}

	u.recordAudit(ctx, caller, entity.AuditActionConsultationReject, consultationID)

	u.log.Infof("Consultation rejected: id=%s, doctor=%s", consultationID, caller.UserID)
	return nil
}

// StartChat marks the chat as started. Only the assigned doctor may do
// this, and only while the consultation is accepted. Repeating the call on
// an already started chat succeeds without effect.
func (u *consultationUsecase) StartChat(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) error {
	db := u.db.WithContext(ctx)

	consultation, err := u.consultationRepo.FindByID(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return err
	}
	if consultation == nil {
		return ErrConsultationNotFound
	}

	if !caller.IsDoctor() || !consultation.IsAssignedDoctor(caller.UserID) {
		return ErrNotAssignedDoctor
	}

	affected, err := u.consultationRepo.StartChat(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to start chat for consultation %s: %+v", consultationID, err)
		return err
	}
	if affected == 0 {
		return ErrChatNotActive
	}

	u.recordAudit(ctx, caller, entity.AuditActionChatStart, consultationID)

	u.log.Infof("Chat started: consultation=%s, doctor=%s", consultationID, caller.UserID)
	return nil
}

// EndChat is the terminal transition: the chat closes and the consultation
// completes in one step. No chat or status operation is valid afterwards.
func (u *consultationUsecase) EndChat(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) error {
	db := u.db.WithContext(ctx)

	consultation, err := u.consultationRepo.FindByID(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return err
	}
	if consultation == nil {
		return ErrConsultationNotFound
	}

	if !caller.IsDoctor() || !consultation.IsAssignedDoctor(caller.UserID) {
		return ErrNotAssignedDoctor
	}

	if consultation.ChatState == entity.ChatStateNotStarted {
		return ErrChatNotStarted
	}

	affected, err := u.consultationRepo.EndChat(db, consultationID)
	if err != nil {
		u.log.Warnf("Failed to end chat for consultation %s: %+v", consultationID, err)
		return err
	}
	if affected == 0 {
		// Lost the race to another end-chat call, or the chat already ended
		return ErrChatNotActive
	}

	u.recordAudit(ctx, caller, entity.AuditActionChatEnd, consultationID)

	u.log.Infof("Chat ended: consultation=%s, doctor=%s", consultationID, caller.UserID)
	return nil
}

// GetDetails returns the consultation with its denormalized patient
// summary, or nil when the id does not resolve. Absence is not an error
// here; callers must handle the nil explicitly.
func (u *consultationUsecase) GetDetails(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) (*dto.ConsultationResponse, error) {
	consultation, err := u.consultationRepo.FindByID(u.db.WithContext(ctx), consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, nil
	}

	return converter.ConsultationToResponse(consultation), nil
}

// GetPendingRequests returns the queue of unhandled requests, oldest first.
func (u *consultationUsecase) GetPendingRequests(ctx context.Context, caller identity.Caller) (*dto.ConsultationListResponse, error) {
	if !caller.IsDoctor() {
		return nil, ErrCallerNotDoctor
	}

	consultations, err := u.consultationRepo.FindByStatus(u.db.WithContext(ctx), entity.ConsultationStatusPending)
	if err != nil {
		u.log.Warnf("Failed to find pending consultations: %+v", err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

// GetMyConsultations returns the caller's own consultation history: as a
// patient, everything they requested; as a doctor, everything they accepted.
func (u *consultationUsecase) GetMyConsultations(ctx context.Context, caller identity.Caller) (*dto.ConsultationListResponse, error) {
	db := u.db.WithContext(ctx)

	var consultations []entity.Consultation
	var err error
	if caller.IsDoctor() {
		consultations, err = u.consultationRepo.FindByDoctorID(db, caller.UserID)
	} else {
		consultations, err = u.consultationRepo.FindByPatientID(db, caller.UserID)
	}
	if err != nil {
		u.log.Warnf("Failed to find consultations for user %s: %+v", caller.UserID, err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

// recordAudit writes a non-fatal audit trail entry for a transition
func (u *consultationUsecase) recordAudit(ctx context.Context, caller identity.Caller, action string, consultationID uuid.UUID) {
	userID := caller.UserID
	metadata := entity.JSON{
		"consultation_id": consultationID.String(),
		"caller_kind":     caller.Kind.String(),
	}
	if err := u.auditService.Record(ctx, u.db.WithContext(ctx), &userID, action, metadata); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
}
