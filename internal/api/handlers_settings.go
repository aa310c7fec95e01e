package api

import (
	"net/http"
	"strconv"

	"github.com/shotline/shotline/internal/httputil"
)

// Settings editable at runtime. Unknown keys are rejected so a typo never
// silently lands in the settings table.
var editableSettings = map[string]bool{
	"generator_url":     true,
	"generator_api_key": true,
	"position_gap":      true,
	"batch_spacing":     true,
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsRepo.All(r.Context())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to load settings")
		return
	}
	// Never echo the API key back out
	if _, ok := settings["generator_api_key"]; ok {
		settings["generator_api_key"] = "********"
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalidJSON, "invalid request body")
		return
	}

	for key, value := range req {
		if !editableSettings[key] {
			httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, "unknown setting: "+key)
			return
		}
		if key == "position_gap" || key == "batch_spacing" {
			if v, err := strconv.Atoi(value); err != nil || v < 1 {
				httputil.WriteError(w, http.StatusBadRequest, httputil.CodeBadRequest, key+" must be a positive integer")
				return
			}
		}
	}

	for key, value := range req {
		if err := s.settingsRepo.Set(r.Context(), key, value); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to save setting "+key)
			return
		}
	}

	// Spacing changes apply on next process start; the engine keeps its
	// configured gap for the lifetime of the run.
	s.config.MergeFromDB(s.db.DB)

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
