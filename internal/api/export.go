package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"drivedesk/internal/export"
	"drivedesk/internal/models"
)

// handleExport serves GET /api/v1/export?branch= as an xlsx download.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	branch := strings.TrimSpace(r.URL.Query().Get("branch"))
	if !models.IsValidBranch(branch) {
		writeError(w, http.StatusBadRequest, "branch is required")
		return
	}

	bookings, err := s.bookings.ListBookings(r.Context(), branch)
	if err != nil {
		s.logger.Error().Err(err).Msg("export: list bookings")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	feedback, err := s.feedback.ListByBranch(r.Context(), branch)
	if err != nil {
		s.logger.Error().Err(err).Msg("export: list feedback")
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	filePath, err := export.SaveBranchReport(s.exports.Path, branch, bookings, feedback)
	if err != nil {
		s.logger.Error().Err(err).Msg("export: build report")
		writeError(w, http.StatusInternalServerError, "export failure")
		return
	}

	s.logger.Info().Str("file_path", filePath).Msg("Excel report created")

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(filePath))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, filePath)
}
