package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/identity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newTestDB returns a gorm.DB backed by sqlmock. The fakes below never touch
// it; it only satisfies the usecase constructors.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeConsultationRepo is an in-memory store that mirrors the conditional
// update semantics of the real repository: transitions report zero affected
// rows when the row is not in the required state.
type fakeConsultationRepo struct {
	consultations map[uuid.UUID]*entity.Consultation
	err           error
	createErr     error
	findCalls     int
	findFailOn    int
	findErr       error
}

func newFakeConsultationRepo() *fakeConsultationRepo {
	return &fakeConsultationRepo{consultations: map[uuid.UUID]*entity.Consultation{}}
}

func (r *fakeConsultationRepo) add(c *entity.Consultation) *entity.Consultation {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.consultations[c.ID] = c
	return c
}

func (r *fakeConsultationRepo) Create(db *gorm.DB, consultation *entity.Consultation) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.err != nil {
		return r.err
	}
	r.add(consultation)
	return nil
}

func (r *fakeConsultationRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	r.findCalls++
	if r.findFailOn != 0 && r.findCalls == r.findFailOn {
		return nil, r.findErr
	}
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.consultations[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeConsultationRepo) FindActiveByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.Consultation, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, c := range r.consultations {
		if c.PatientID == patientID && c.IsActive() {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConsultationRepo) FindByStatus(db *gorm.DB, status entity.ConsultationStatus) ([]entity.Consultation, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []entity.Consultation
	for _, c := range r.consultations {
		if c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Consultation, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []entity.Consultation
	for _, c := range r.consultations {
		if c.PatientID == patientID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Consultation, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []entity.Consultation
	for _, c := range r.consultations {
		if c.AcceptedByDoctorID != nil && *c.AcceptedByDoctorID == doctorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConsultationRepo) Accept(db *gorm.DB, id uuid.UUID, doctorID uuid.UUID, consultationDateTime time.Time) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	c, ok := r.consultations[id]
	if !ok || c.Status != entity.ConsultationStatusPending {
		return 0, nil
	}
	c.Status = entity.ConsultationStatusAccepted
	c.AcceptedByDoctorID = &doctorID
	c.ConsultationDateTime = &consultationDateTime
	return 1, nil
}

func (r *fakeConsultationRepo) Reject(db *gorm.DB, id uuid.UUID) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	c, ok := r.consultations[id]
	if !ok || c.Status != entity.ConsultationStatusPending {
		return 0, nil
	}
	c.Status = entity.ConsultationStatusRejected
	return 1, nil
}

func (r *fakeConsultationRepo) StartChat(db *gorm.DB, id uuid.UUID) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	c, ok := r.consultations[id]
	if !ok || c.Status != entity.ConsultationStatusAccepted || c.ChatState == entity.ChatStateEnded {
		return 0, nil
	}
	c.ChatState = entity.ChatStateActive
	return 1, nil
}

func (r *fakeConsultationRepo) EndChat(db *gorm.DB, id uuid.UUID) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	c, ok := r.consultations[id]
	if !ok || c.Status != entity.ConsultationStatusAccepted || c.ChatState != entity.ChatStateActive {
		return 0, nil
	}
	c.Status = entity.ConsultationStatusCompleted
	c.ChatState = entity.ChatStateEnded
	return 1, nil
}

type fakePatientProfileRepo struct {
	profiles map[uuid.UUID]*entity.PatientProfile
}

func newFakePatientProfileRepo() *fakePatientProfileRepo {
	return &fakePatientProfileRepo{profiles: map[uuid.UUID]*entity.PatientProfile{}}
}

func (r *fakePatientProfileRepo) Create(db *gorm.DB, profile *entity.PatientProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakePatientProfileRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *fakePatientProfileRepo) Update(db *gorm.DB, profile *entity.PatientProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

type fakeAuditService struct {
	actions []string
}

func (s *fakeAuditService) Record(ctx context.Context, db *gorm.DB, userID *uuid.UUID, action string, metadata entity.JSON) error {
	s.actions = append(s.actions, action)
	return nil
}

type consultationFixture struct {
	usecase  ConsultationUsecase
	repo     *fakeConsultationRepo
	patients *fakePatientProfileRepo
	audit    *fakeAuditService
}

func newConsultationFixture(t *testing.T) *consultationFixture {
	t.Helper()

	repo := newFakeConsultationRepo()
	patients := newFakePatientProfileRepo()
	audit := &fakeAuditService{}

	return &consultationFixture{
		usecase:  NewConsultationUsecase(newTestDB(t), newTestLogger(), repo, patients, audit),
		repo:     repo,
		patients: patients,
		audit:    audit,
	}
}

func (f *consultationFixture) addPatient(userID uuid.UUID) {
	f.patients.profiles[userID] = &entity.PatientProfile{
		UserID:      userID,
		Gender:      entity.GenderFemale,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func patientCaller(id uuid.UUID) identity.Caller {
	return identity.Caller{UserID: id, Kind: identity.KindPatient}
}

func doctorCaller(id uuid.UUID) identity.Caller {
	return identity.Caller{UserID: id, Kind: identity.KindDoctor}
}

func TestConsultationUsecase_CreateRequest(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New()

	t.Run("creates a pending request", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.addPatient(patientID)

		resp, err := f.usecase.CreateRequest(ctx, patientCaller(patientID), &dto.CreateConsultationRequest{
			PatientID: patientID,
			ReportPreview: &entity.ReportPreview{
				Overview:   "Recurring headaches for two weeks",
				Conclusion: "Needs doctor review",
			},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, string(entity.ConsultationStatusPending), resp.Status)
		assert.Equal(t, string(entity.ChatStateNotStarted), resp.ChatState)
		assert.Equal(t, patientID, resp.PatientID)
		assert.Equal(t, patientID, resp.SenderUserID)
		assert.Nil(t, resp.AcceptedByDoctorID)
		assert.Nil(t, resp.ConsultationDateTime)
		require.NotNil(t, resp.ReportPreview)
		assert.Equal(t, "Recurring headaches for two weeks", resp.ReportPreview.Overview)
		assert.Equal(t, []string{entity.AuditActionConsultationCreate}, f.audit.actions)
	})

	t.Run("unknown patient", func(t *testing.T) {
		f := newConsultationFixture(t)

		resp, err := f.usecase.CreateRequest(ctx, patientCaller(patientID), &dto.CreateConsultationRequest{PatientID: patientID})
		assert.ErrorIs(t, err, ErrPatientNotFound)
		assert.Nil(t, resp)
	})

	t.Run("second create while one is active is a silent no-op", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.addPatient(patientID)

		first, err := f.usecase.CreateRequest(ctx, patientCaller(patientID), &dto.CreateConsultationRequest{PatientID: patientID})
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := f.usecase.CreateRequest(ctx, patientCaller(patientID), &dto.CreateConsultationRequest{PatientID: patientID})
		require.NoError(t, err)
		assert.Nil(t, second)
		assert.Len(t, f.repo.consultations, 1)
	})

	t.Run("racing insert against the unique index is also a no-op", func(t *testing.T) {
		// Two interleaved creates can both pass the dedup check; the loser
		// hits the partial unique index and must stay a silent no-op
		f := newConsultationFixture(t)
		f.addPatient(patientID)
		f.repo.createErr = &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "idx_consultations_patient_active",
		}

		resp, err := f.usecase.CreateRequest(ctx, patientCaller(patientID), &dto.CreateConsultationRequest{PatientID: patientID})
		require.NoError(t, err)
		assert.Nil(t, resp)
		assert.Empty(t, f.audit.actions)
	})

	t.Run("unrelated constraint violations still surface", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.addPatient(patientID)
		f.repo.createErr = &pgconn.PgError{
			Code:           "23503",
			ConstraintName: "consultations_patient_id_fkey",
		}

		resp, err := f.usecase.CreateRequest(ctx, patientCaller(patientID), &dto.CreateConsultationRequest{PatientID: patientID})
		assert.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("rejected request frees the slot for a new one", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.addPatient(patientID)
		f.repo.add(&entity.Consultation{
			PatientID: patientID,
			Status:    entity.ConsultationStatusRejected,
			ChatState: entity.ChatStateNotStarted,
		})

		resp, err := f.usecase.CreateRequest(ctx, patientCaller(patientID), &dto.CreateConsultationRequest{PatientID: patientID})
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Len(t, f.repo.consultations, 2)
	})
}

func TestConsultationUsecase_Accept(t *testing.T) {
	ctx := context.Background()
	doctorID := uuid.New()
	when := "2026-09-15T10:00:00Z"

	newPending := func(f *consultationFixture) *entity.Consultation {
		return f.repo.add(&entity.Consultation{
			PatientID:    uuid.New(),
			SenderUserID: uuid.New(),
			Status:       entity.ConsultationStatusPending,
			ChatState:    entity.ChatStateNotStarted,
		})
	}

	t.Run("assigns the calling doctor and the appointment time", func(t *testing.T) {
		f := newConsultationFixture(t)
		pending := newPending(f)

		resp, err := f.usecase.Accept(ctx, doctorCaller(doctorID), pending.ID, &dto.AcceptConsultationRequest{ConsultationDateTime: when})
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, string(entity.ConsultationStatusAccepted), resp.Status)
		require.NotNil(t, resp.AcceptedByDoctorID)
		assert.Equal(t, doctorID, *resp.AcceptedByDoctorID)
		require.NotNil(t, resp.ConsultationDateTime)
		assert.Equal(t, time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC), resp.ConsultationDateTime.UTC())
		assert.Equal(t, []string{entity.AuditActionConsultationAccept}, f.audit.actions)
	})

	t.Run("failed reload still reports the accepted state", func(t *testing.T) {
		f := newConsultationFixture(t)
		pending := newPending(f)

		// First FindByID loads the pending row, the post-transition reload fails
		f.repo.findFailOn = 2
		f.repo.findErr = errors.New("connection reset")

		resp, err := f.usecase.Accept(ctx, doctorCaller(doctorID), pending.ID, &dto.AcceptConsultationRequest{ConsultationDateTime: when})
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, string(entity.ConsultationStatusAccepted), resp.Status)
		require.NotNil(t, resp.AcceptedByDoctorID)
		assert.Equal(t, doctorID, *resp.AcceptedByDoctorID)
		require.NotNil(t, resp.ConsultationDateTime)
		assert.Equal(t, time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC), resp.ConsultationDateTime.UTC())
	})

	t.Run("caller is not a doctor", func(t *testing.T) {
		f := newConsultationFixture(t)
		pending := newPending(f)

		_, err := f.usecase.Accept(ctx, patientCaller(uuid.New()), pending.ID, &dto.AcceptConsultationRequest{ConsultationDateTime: when})
		assert.ErrorIs(t, err, ErrCallerNotDoctor)
	})

	t.Run("invalid date time", func(t *testing.T) {
		f := newConsultationFixture(t)
		pending := newPending(f)

		_, err := f.usecase.Accept(ctx, doctorCaller(doctorID), pending.ID, &dto.AcceptConsultationRequest{ConsultationDateTime: "next tuesday"})
		assert.ErrorIs(t, err, ErrInvalidDateTimeFormat)
	})

	t.Run("unknown consultation", func(t *testing.T) {
		f := newConsultationFixture(t)

		_, err := f.usecase.Accept(ctx, doctorCaller(doctorID), uuid.New(), &dto.AcceptConsultationRequest{ConsultationDateTime: when})
		assert.ErrorIs(t, err, ErrConsultationNotFound)
	})

	t.Run("only one accept wins", func(t *testing.T) {
		f := newConsultationFixture(t)
		pending := newPending(f)

		_, err := f.usecase.Accept(ctx, doctorCaller(doctorID), pending.ID, &dto.AcceptConsultationRequest{ConsultationDateTime: when})
		require.NoError(t, err)

		otherDoctor := uuid.New()
		_, err = f.usecase.Accept(ctx, doctorCaller(otherDoctor), pending.ID, &dto.AcceptConsultationRequest{ConsultationDateTime: when})
		assert.ErrorIs(t, err, ErrRequestAlreadyHandled)

		stored := f.repo.consultations[pending.ID]
		assert.Equal(t, doctorID, *stored.AcceptedByDoctorID)
	})

	t.Run("rejected request cannot be accepted", func(t *testing.T) {
		f := newConsultationFixture(t)
		rejected := f.repo.add(&entity.Consultation{
			PatientID: uuid.New(),
			Status:    entity.ConsultationStatusRejected,
			ChatState: entity.ChatStateNotStarted,
		})

		_, err := f.usecase.Accept(ctx, doctorCaller(doctorID), rejected.ID, &dto.AcceptConsultationRequest{ConsultationDateTime: when})
		assert.ErrorIs(t, err, ErrRequestAlreadyHandled)
	})
}

func TestConsultationUsecase_Reject(t *testing.T) {
	ctx := context.Background()
	doctorID := uuid.New()

	t.Run("rejects a pending request", func(t *testing.T) {
		f := newConsultationFixture(t)
		pending := f.repo.add(&entity.Consultation{
			PatientID: uuid.New(),
			Status:    entity.ConsultationStatusPending,
			ChatState: entity.ChatStateNotStarted,
		})

		err := f.usecase.Reject(ctx, doctorCaller(doctorID), pending.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ConsultationStatusRejected, f.repo.consultations[pending.ID].Status)
		assert.Equal(t, []string{entity.AuditActionConsultationReject}, f.audit.actions)
	})

	t.Run("caller is not a doctor", func(t *testing.T) {
		f := newConsultationFixture(t)
		pending := f.repo.add(&entity.Consultation{
			PatientID: uuid.New(),
			Status:    entity.ConsultationStatusPending,
		})

		err := f.usecase.Reject(ctx, patientCaller(uuid.New()), pending.ID)
		assert.ErrorIs(t, err, ErrCallerNotDoctor)
	})

	t.Run("already handled", func(t *testing.T) {
		f := newConsultationFixture(t)
		accepted := f.repo.add(&entity.Consultation{
			PatientID: uuid.New(),
			Status:    entity.ConsultationStatusAccepted,
		})

		err := f.usecase.Reject(ctx, doctorCaller(doctorID), accepted.ID)
		assert.ErrorIs(t, err, ErrRequestAlreadyHandled)
	})
}

func TestConsultationUsecase_StartChat(t *testing.T) {
	ctx := context.Background()
	doctorID := uuid.New()

	newAccepted := func(f *consultationFixture) *entity.Consultation {
		id := doctorID
		return f.repo.add(&entity.Consultation{
			PatientID:          uuid.New(),
			Status:             entity.ConsultationStatusAccepted,
			AcceptedByDoctorID: &id,
			ChatState:          entity.ChatStateNotStarted,
		})
	}

	t.Run("assigned doctor starts the chat", func(t *testing.T) {
		f := newConsultationFixture(t)
		accepted := newAccepted(f)

		err := f.usecase.StartChat(ctx, doctorCaller(doctorID), accepted.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ChatStateActive, f.repo.consultations[accepted.ID].ChatState)
		assert.Equal(t, []string{entity.AuditActionChatStart}, f.audit.actions)
	})

	t.Run("another doctor cannot start it", func(t *testing.T) {
		f := newConsultationFixture(t)
		accepted := newAccepted(f)

		err := f.usecase.StartChat(ctx, doctorCaller(uuid.New()), accepted.ID)
		assert.ErrorIs(t, err, ErrNotAssignedDoctor)
	})

	t.Run("the patient cannot start it", func(t *testing.T) {
		f := newConsultationFixture(t)
		accepted := newAccepted(f)

		err := f.usecase.StartChat(ctx, patientCaller(accepted.PatientID), accepted.ID)
		assert.ErrorIs(t, err, ErrNotAssignedDoctor)
	})

	t.Run("pending consultation has no chat yet", func(t *testing.T) {
		f := newConsultationFixture(t)
		id := doctorID
		pending := f.repo.add(&entity.Consultation{
			PatientID:          uuid.New(),
			Status:             entity.ConsultationStatusPending,
			AcceptedByDoctorID: &id,
			ChatState:          entity.ChatStateNotStarted,
		})

		err := f.usecase.StartChat(ctx, doctorCaller(doctorID), pending.ID)
		assert.ErrorIs(t, err, ErrChatNotActive)
	})

	t.Run("starting twice is idempotent", func(t *testing.T) {
		f := newConsultationFixture(t)
		accepted := newAccepted(f)

		require.NoError(t, f.usecase.StartChat(ctx, doctorCaller(doctorID), accepted.ID))
		require.NoError(t, f.usecase.StartChat(ctx, doctorCaller(doctorID), accepted.ID))
		assert.Equal(t, entity.ChatStateActive, f.repo.consultations[accepted.ID].ChatState)
	})
}

func TestConsultationUsecase_EndChat(t *testing.T) {
	ctx := context.Background()
	doctorID := uuid.New()

	newActive := func(f *consultationFixture) *entity.Consultation {
		id := doctorID
		return f.repo.add(&entity.Consultation{
			PatientID:          uuid.New(),
			Status:             entity.ConsultationStatusAccepted,
			AcceptedByDoctorID: &id,
			ChatState:          entity.ChatStateActive,
		})
	}

	t.Run("ending the chat completes the consultation", func(t *testing.T) {
		f := newConsultationFixture(t)
		active := newActive(f)

		err := f.usecase.EndChat(ctx, doctorCaller(doctorID), active.ID)
		require.NoError(t, err)

		stored := f.repo.consultations[active.ID]
		assert.Equal(t, entity.ConsultationStatusCompleted, stored.Status)
		assert.Equal(t, entity.ChatStateEnded, stored.ChatState)
		assert.Equal(t, []string{entity.AuditActionChatEnd}, f.audit.actions)
	})

	t.Run("chat that never started cannot end", func(t *testing.T) {
		f := newConsultationFixture(t)
		id := doctorID
		accepted := f.repo.add(&entity.Consultation{
			PatientID:          uuid.New(),
			Status:             entity.ConsultationStatusAccepted,
			AcceptedByDoctorID: &id,
			ChatState:          entity.ChatStateNotStarted,
		})

		err := f.usecase.EndChat(ctx, doctorCaller(doctorID), accepted.ID)
		assert.ErrorIs(t, err, ErrChatNotStarted)
	})

	t.Run("ending twice fails the second time", func(t *testing.T) {
		f := newConsultationFixture(t)
		active := newActive(f)

		require.NoError(t, f.usecase.EndChat(ctx, doctorCaller(doctorID), active.ID))
		err := f.usecase.EndChat(ctx, doctorCaller(doctorID), active.ID)
		assert.ErrorIs(t, err, ErrChatNotActive)
	})

	t.Run("another doctor cannot end it", func(t *testing.T) {
		f := newConsultationFixture(t)
		active := newActive(f)

		err := f.usecase.EndChat(ctx, doctorCaller(uuid.New()), active.ID)
		assert.ErrorIs(t, err, ErrNotAssignedDoctor)
	})
}

func TestConsultationUsecase_GetDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("absent consultation yields nil without error", func(t *testing.T) {
		f := newConsultationFixture(t)

		resp, err := f.usecase.GetDetails(ctx, patientCaller(uuid.New()), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("returns the consultation", func(t *testing.T) {
		f := newConsultationFixture(t)
		c := f.repo.add(&entity.Consultation{
			PatientID: uuid.New(),
			Status:    entity.ConsultationStatusPending,
			ChatState: entity.ChatStateNotStarted,
		})

		resp, err := f.usecase.GetDetails(ctx, patientCaller(c.PatientID), c.ID)
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, c.ID, resp.ID)
	})
}

func TestConsultationUsecase_GetPendingRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("only doctors see the queue", func(t *testing.T) {
		f := newConsultationFixture(t)

		_, err := f.usecase.GetPendingRequests(ctx, patientCaller(uuid.New()))
		assert.ErrorIs(t, err, ErrCallerNotDoctor)
	})

	t.Run("lists only pending requests", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.repo.add(&entity.Consultation{PatientID: uuid.New(), Status: entity.ConsultationStatusPending})
		f.repo.add(&entity.Consultation{PatientID: uuid.New(), Status: entity.ConsultationStatusRejected})

		resp, err := f.usecase.GetPendingRequests(ctx, doctorCaller(uuid.New()))
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Consultations, 1)
		assert.Equal(t, string(entity.ConsultationStatusPending), resp.Consultations[0].Status)
	})
}

func TestConsultationUsecase_GetMyConsultations(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New()
	doctorID := uuid.New()

	f := newConsultationFixture(t)
	f.repo.add(&entity.Consultation{PatientID: patientID, Status: entity.ConsultationStatusPending})
	f.repo.add(&entity.Consultation{
		PatientID:          uuid.New(),
		Status:             entity.ConsultationStatusAccepted,
		AcceptedByDoctorID: &doctorID,
	})

	t.Run("patient sees own requests", func(t *testing.T) {
		resp, err := f.usecase.GetMyConsultations(ctx, patientCaller(patientID))
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, patientID, resp.Consultations[0].PatientID)
	})

	t.Run("doctor sees accepted consultations", func(t *testing.T) {
		resp, err := f.usecase.GetMyConsultations(ctx, doctorCaller(doctorID))
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		require.NotNil(t, resp.Consultations[0].AcceptedByDoctorID)
		assert.Equal(t, doctorID, *resp.Consultations[0].AcceptedByDoctorID)
	})
}

// Full path through the state machine, pending to completed, with the
// terminal checks at the end.
func TestConsultationUsecase_Lifecycle(t *testing.T) {
	ctx := context.Background()
	patientID := uuid.New()
	doctorID := uuid.New()

	f := newConsultationFixture(t)
	f.addPatient(patientID)

	created, err := f.usecase.CreateRequest(ctx, patientCaller(patientID), &dto.CreateConsultationRequest{PatientID: patientID})
	require.NoError(t, err)
	require.NotNil(t, created)

	accepted, err := f.usecase.Accept(ctx, doctorCaller(doctorID), created.ID, &dto.AcceptConsultationRequest{ConsultationDateTime: "2026-09-20T14:30:00Z"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ConsultationStatusAccepted), accepted.Status)

	require.NoError(t, f.usecase.StartChat(ctx, doctorCaller(doctorID), created.ID))
	require.NoError(t, f.usecase.EndChat(ctx, doctorCaller(doctorID), created.ID))

	// Completed is terminal: no transition applies anymore
	err = f.usecase.StartChat(ctx, doctorCaller(doctorID), created.ID)
	assert.ErrorIs(t, err, ErrChatNotActive)

	err = f.usecase.EndChat(ctx, doctorCaller(doctorID), created.ID)
	assert.ErrorIs(t, err, ErrChatNotActive)

	_, err = f.usecase.Accept(ctx, doctorCaller(doctorID), created.ID, &dto.AcceptConsultationRequest{ConsultationDateTime: "2026-09-21T14:30:00Z"})
	assert.ErrorIs(t, err, ErrRequestAlreadyHandled)

	// The slot is free again, the patient can open a new request
	again, err := f.usecase.CreateRequest(ctx, patientCaller(patientID), &dto.CreateConsultationRequest{PatientID: patientID})
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.NotEqual(t, created.ID, again.ID)

	assert.Equal(t, []string{
		entity.AuditActionConsultationCreate,
		entity.AuditActionConsultationAccept,
		entity.AuditActionChatStart,
		entity.AuditActionChatEnd,
		entity.AuditActionConsultationCreate,
	}, f.audit.actions)
}
