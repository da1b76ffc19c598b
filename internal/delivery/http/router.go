package http

import (
	"net/http"

	"telehealth-backend/internal/delivery/http/handler"
	"telehealth-backend/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	consultationHandler *handler.ConsultationHandler
	chatHandler         *handler.ChatHandler
	doctorHandler       *handler.DoctorHandler
	patientHandler      *handler.PatientHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	consultationHandler *handler.ConsultationHandler,
	chatHandler *handler.ChatHandler,
	doctorHandler *handler.DoctorHandler,
	patientHandler *handler.PatientHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		consultationHandler: consultationHandler,
		chatHandler:         chatHandler,
		doctorHandler:       doctorHandler,
		patientHandler:      patientHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Consultation routes (protected - doctor only). Registered before the
	// generic routes so "/pending" is not captured as an {id}.
	consultationsDoctor := api.PathPrefix("/consultations").Subrouter()
	consultationsDoctor.Use(r.authMiddleware.Authenticate)
	consultationsDoctor.Use(middleware.RequireDoctor)
	consultationsDoctor.HandleFunc("/pending", r.consultationHandler.GetPending).Methods(http.MethodGet)
	consultationsDoctor.HandleFunc("/{id}/accept", r.consultationHandler.Accept).Methods(http.MethodPost)
	consultationsDoctor.HandleFunc("/{id}/reject", r.consultationHandler.Reject).Methods(http.MethodPost)
	consultationsDoctor.HandleFunc("/{id}/chat/start", r.consultationHandler.StartChat).Methods(http.MethodPost)
	consultationsDoctor.HandleFunc("/{id}/chat/end", r.consultationHandler.EndChat).Methods(http.MethodPost)

	// Consultation routes (protected)
	consultations := api.PathPrefix("/consultations").Subrouter()
	consultations.Use(r.authMiddleware.Authenticate)
	consultations.HandleFunc("", r.consultationHandler.Create).Methods(http.MethodPost)
	consultations.HandleFunc("/me", r.consultationHandler.GetMine).Methods(http.MethodGet)
	consultations.HandleFunc("/{id}", r.consultationHandler.GetDetails).Methods(http.MethodGet)

	// Chat routes (protected - doctor or patient of the consultation)
	consultations.HandleFunc("/{id}/messages", r.chatHandler.SendMessage).Methods(http.MethodPost)
	consultations.HandleFunc("/{id}/messages", r.chatHandler.GetMessages).Methods(http.MethodGet)

	// Doctor directory (protected)
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.Use(r.authMiddleware.Authenticate)
	doctors.HandleFunc("", r.doctorHandler.GetAll).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}", r.doctorHandler.GetByID).Methods(http.MethodGet)

	// Doctor self profile (protected - doctor only)
	doctorsSelf := api.PathPrefix("/doctors").Subrouter()
	doctorsSelf.Use(r.authMiddleware.Authenticate)
	doctorsSelf.Use(middleware.RequireDoctor)
	doctorsSelf.HandleFunc("/me", r.doctorHandler.UpdateProfile).Methods(http.MethodPut)

	// Patient profiles (protected)
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.HandleFunc("/{id}", r.patientHandler.GetByID).Methods(http.MethodGet)

	// Patient self profile (protected - patient only)
	patientsSelf := api.PathPrefix("/patients").Subrouter()
	patientsSelf.Use(r.authMiddleware.Authenticate)
	patientsSelf.Use(middleware.RequirePatient)
	patientsSelf.HandleFunc("/me", r.patientHandler.UpdateProfile).Methods(http.MethodPut)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAll).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetByID).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
