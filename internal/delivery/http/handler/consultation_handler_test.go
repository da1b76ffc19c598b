package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"telehealth-backend/internal/delivery/dto"
	"telehealth-backend/internal/delivery/http/middleware"
	"telehealth-backend/internal/identity"
	"telehealth-backend/internal/usecase"
	"telehealth-backend/pkg/response"
	"telehealth-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConsultationUsecase struct {
	createResp *dto.ConsultationResponse
	acceptResp *dto.ConsultationResponse
	err        error
}

func (s *stubConsultationUsecase) CreateRequest(ctx context.Context, caller identity.Caller, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	return s.createResp, s.err
}

func (s *stubConsultationUsecase) Accept(ctx context.Context, caller identity.Caller, consultationID uuid.UUID, req *dto.AcceptConsultationRequest) (*dto.ConsultationResponse, error) {
	return s.acceptResp, s.err
}

func (s *stubConsultationUsecase) Reject(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) error {
	return s.err
}

func (s *stubConsultationUsecase) StartChat(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) error {
	return s.err
}

func (s *stubConsultationUsecase) EndChat(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) error {
	return s.err
}

func (s *stubConsultationUsecase) GetDetails(ctx context.Context, caller identity.Caller, consultationID uuid.UUID) (*dto.ConsultationResponse, error) {
	return s.createResp, s.err
}

func (s *stubConsultationUsecase) GetPendingRequests(ctx context.Context, caller identity.Caller) (*dto.ConsultationListResponse, error) {
	return &dto.ConsultationListResponse{}, s.err
}

func (s *stubConsultationUsecase) GetMyConsultations(ctx context.Context, caller identity.Caller) (*dto.ConsultationListResponse, error) {
	return &dto.ConsultationListResponse{}, s.err
}

type stubResolver struct {
	caller identity.Caller
}

func (s *stubResolver) Resolve(ctx context.Context, userID uuid.UUID) (identity.Caller, error) {
	return s.caller, nil
}

func newConsultationHandlerFixture(uc usecase.ConsultationUsecase, caller identity.Caller) *ConsultationHandler {
	return NewConsultationHandler(uc, &stubResolver{caller: caller}, validator.NewValidator())
}

func authedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestConsultationHandler_Create(t *testing.T) {
	patientID := uuid.New()
	caller := identity.Caller{UserID: patientID, Kind: identity.KindPatient}

	body, _ := json.Marshal(dto.CreateConsultationRequest{PatientID: patientID})

	t.Run("created", func(t *testing.T) {
		h := newConsultationHandlerFixture(&stubConsultationUsecase{
			createResp: &dto.ConsultationResponse{ID: uuid.New(), PatientID: patientID, Status: "pending"},
		}, caller)

		rec := httptest.NewRecorder()
		h.Create(rec, authedRequest(http.MethodPost, "/api/v1/consultations", body, patientID))

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
	})

	t.Run("duplicate create returns 200 with null data", func(t *testing.T) {
		h := newConsultationHandlerFixture(&stubConsultationUsecase{}, caller)

		rec := httptest.NewRecorder()
		h.Create(rec, authedRequest(http.MethodPost, "/api/v1/consultations", body, patientID))

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Data)
	})

	t.Run("unknown patient is 404", func(t *testing.T) {
		h := newConsultationHandlerFixture(&stubConsultationUsecase{err: usecase.ErrPatientNotFound}, caller)

		rec := httptest.NewRecorder()
		h.Create(rec, authedRequest(http.MethodPost, "/api/v1/consultations", body, patientID))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no identity is 401", func(t *testing.T) {
		h := newConsultationHandlerFixture(&stubConsultationUsecase{}, caller)

		rec := httptest.NewRecorder()
		h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/consultations", bytes.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestConsultationHandler_TransitionErrorMapping(t *testing.T) {
	doctorID := uuid.New()
	caller := identity.Caller{UserID: doctorID, Kind: identity.KindDoctor}
	consultationID := uuid.New()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", usecase.ErrConsultationNotFound, http.StatusNotFound},
		{"not a doctor", usecase.ErrCallerNotDoctor, http.StatusForbidden},
		{"not assigned", usecase.ErrNotAssignedDoctor, http.StatusForbidden},
		{"already handled", usecase.ErrRequestAlreadyHandled, http.StatusConflict},
		{"chat not started", usecase.ErrChatNotStarted, http.StatusConflict},
		{"chat not active", usecase.ErrChatNotActive, http.StatusConflict},
		{"bad date time", usecase.ErrInvalidDateTimeFormat, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newConsultationHandlerFixture(&stubConsultationUsecase{err: tc.err}, caller)

			rec := httptest.NewRecorder()
			req := authedRequest(http.MethodPost, "/api/v1/consultations/"+consultationID.String()+"/reject", nil, doctorID)
			req = mux.SetURLVars(req, map[string]string{"id": consultationID.String()})
			h.Reject(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
		})
	}
}

func TestConsultationHandler_GetDetails(t *testing.T) {
	patientID := uuid.New()
	caller := identity.Caller{UserID: patientID, Kind: identity.KindPatient}
	consultationID := uuid.New()

	t.Run("absent consultation is 200 with null data", func(t *testing.T) {
		h := newConsultationHandlerFixture(&stubConsultationUsecase{}, caller)

		rec := httptest.NewRecorder()
		req := authedRequest(http.MethodGet, "/api/v1/consultations/"+consultationID.String(), nil, patientID)
		req = mux.SetURLVars(req, map[string]string{"id": consultationID.String()})
		h.GetDetails(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Data)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		h := newConsultationHandlerFixture(&stubConsultationUsecase{}, caller)

		rec := httptest.NewRecorder()
		req := authedRequest(http.MethodGet, "/api/v1/consultations/nope", nil, patientID)
		req = mux.SetURLVars(req, map[string]string{"id": "nope"})
		h.GetDetails(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConsultationHandler_AcceptValidation(t *testing.T) {
	doctorID := uuid.New()
	caller := identity.Caller{UserID: doctorID, Kind: identity.KindDoctor}
	consultationID := uuid.New()

	t.Run("missing date time fails validation", func(t *testing.T) {
		h := newConsultationHandlerFixture(&stubConsultationUsecase{}, caller)

		body, _ := json.Marshal(dto.AcceptConsultationRequest{})
		rec := httptest.NewRecorder()
		req := authedRequest(http.MethodPost, "/api/v1/consultations/"+consultationID.String()+"/accept", body, doctorID)
		req = mux.SetURLVars(req, map[string]string{"id": consultationID.String()})
		h.Accept(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
