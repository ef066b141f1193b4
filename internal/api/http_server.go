package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"drivedesk/internal/config"
	"drivedesk/internal/metrics"
	"drivedesk/internal/models"
	"drivedesk/internal/service"
	"drivedesk/internal/storage"

	"github.com/rs/zerolog"
)

// HTTPServer is the presentation-facing surface over the booking core. It
// holds no state of its own; every request re-reads the stores.
type HTTPServer struct {
	cfg      config.ServerConfig
	bookings *service.BookingService
	managers *service.ManagerService
	feedback *service.FeedbackService
	catalog  config.CatalogConfig
	exports  config.ExportConfig
	logger   *zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(
	cfg config.ServerConfig,
	bookings *service.BookingService,
	managers *service.ManagerService,
	feedback *service.FeedbackService,
	catalog config.CatalogConfig,
	exports config.ExportConfig,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		managers: managers,
		feedback: feedback,
		catalog:  catalog,
		exports:  exports,
		logger:   logger,
	}

	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingStatus)
	mux.HandleFunc("/api/v1/managers", srv.handleRegister)
	mux.HandleFunc("/api/v1/session", srv.handleSession)
	mux.HandleFunc("/api/v1/branches/available", srv.handleAvailableBranches)
	mux.HandleFunc("/api/v1/feedback", srv.handleFeedback)
	mux.HandleFunc("/api/v1/analytics/models", srv.handleModelAnalytics)
	mux.HandleFunc("/api/v1/catalog", srv.handleCatalog)
	mux.HandleFunc("/api/v1/export", srv.handleExport)

	handler := srv.loggingMiddleware(NewRateLimiter(cfg.RateLimit).Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the configured handler chain, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBookings(w, r)
	case http.MethodPost:
		s.createBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	branch := strings.TrimSpace(r.URL.Query().Get("branch"))
	if branch != "" && !models.IsValidBranch(branch) {
		writeError(w, http.StatusBadRequest, "unknown branch")
		return
	}

	bookings, err := s.bookings.ListBookings(r.Context(), branch)
	if err != nil {
		s.logger.Error().Err(err).Msg("list bookings")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var input models.BookingInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if missing := missingBookingFields(input); missing != "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", missing))
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), input)
	if err != nil {
		s.logger.Error().Err(err).Msg("create booking")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

func missingBookingFields(input models.BookingInput) string {
	switch {
	case input.Customer == "":
		return "customer"
	case input.Email == "":
		return "email"
	case input.Phone == "":
		return "phone"
	case input.Model == "":
		return "model"
	case input.Dealership == "":
		return "dealership"
	case input.Date == "":
		return "date"
	case input.Time == "":
		return "time"
	}
	return ""
}

// handleBookingStatus serves PATCH /api/v1/bookings/{id}/status. An unknown
// id responds 204 like a successful update; the store treats it as a no-op
// and callers cannot tell the difference.
func (s *HTTPServer) handleBookingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	id, tail, found := strings.Cut(rest, "/")
	if !found || tail != "status" || id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.bookings.UpdateStatus(r.Context(), id, body.Status); err != nil {
		if errors.Is(err, service.ErrUnknownStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Str("booking_id", id).Msg("update status")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var input models.ManagerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.Name == "" || input.Email == "" || input.Branch == "" || input.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email, branch and password are required")
		return
	}

	manager, err := s.managers.Register(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrBranchTaken):
			writeError(w, http.StatusConflict, fmt.Sprintf("Manager already exists for %s branch", input.Branch))
		case errors.Is(err, storage.ErrEmailTaken):
			writeError(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, storage.ErrUnknownBranch):
			writeError(w, http.StatusBadRequest, "unknown branch")
		default:
			s.logger.Error().Err(err).Msg("register manager")
			writeError(w, http.StatusInternalServerError, "storage failure")
		}
		return
	}

	// The stored password is never echoed back.
	manager.Password = ""
	writeJSON(w, http.StatusCreated, manager)
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.login(w, r)
	case http.MethodGet:
		s.currentSession(w, r)
	case http.MethodDelete:
		s.logout(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := s.managers.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			// One generic message for unknown email and wrong password alike.
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.logger.Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *HTTPServer) currentSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.managers.Session(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("read session")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.managers.Logout(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("logout")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleAvailableBranches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	branches, err := s.managers.AvailableBranches(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("available branches")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

func (s *HTTPServer) handleFeedback(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listFeedback(w, r)
	case http.MethodPost:
		s.recordFeedback(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listFeedback(w http.ResponseWriter, r *http.Request) {
	branch := strings.TrimSpace(r.URL.Query().Get("branch"))
	if !models.IsValidBranch(branch) {
		writeError(w, http.StatusBadRequest, "branch is required")
		return
	}

	feedback, err := s.feedback.ListByBranch(r.Context(), branch)
	if err != nil {
		s.logger.Error().Err(err).Msg("list feedback")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	if feedback == nil {
		feedback = []models.Feedback{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"feedback": feedback})
}

func (s *HTTPServer) recordFeedback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookingID string `json:"booking_id"`
		Ratings   []int  `json:"ratings"`
		Comments  string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	fb, err := s.feedback.Record(r.Context(), body.BookingID, body.Ratings, body.Comments)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRatings):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrBookingNotFound):
			writeError(w, http.StatusNotFound, "booking not found")
		case errors.Is(err, storage.ErrFeedbackExists):
			writeError(w, http.StatusConflict, "feedback already recorded for this booking")
		default:
			s.logger.Error().Err(err).Msg("record feedback")
			writeError(w, http.StatusInternalServerError, "storage failure")
		}
		return
	}

	writeJSON(w, http.StatusCreated, fb)
}

func (s *HTTPServer) handleModelAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	branch := strings.TrimSpace(r.URL.Query().Get("branch"))
	if branch != "" && !models.IsValidBranch(branch) {
		writeError(w, http.StatusBadRequest, "unknown branch")
		return
	}

	popularity, err := s.bookings.ModelPopularity(r.Context(), branch)
	if err != nil {
		s.logger.Error().Err(err).Msg("model analytics")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"models": popularity})
}

func (s *HTTPServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"models":      s.catalog.Models,
		"dealerships": s.catalog.Dealerships,
		"branches":    models.Branches,
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
