package handlers

import (
	"net/http"

	"pixelfin/internal/database"
	"pixelfin/internal/logging"
)

// saveSettingsRequest is the POST /api/settings payload: the library the
// settings belong to plus the settings document itself.
type saveSettingsRequest struct {
	Library string `json:"library" validate:"required"`
	database.Settings
}

// GetSettings returns the stored settings for a library
// (?library=Movies), falling back to the last-used settings when no
// library is given or nothing is stored for it.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	library := r.URL.Query().Get("library")

	if library != "" {
		s, found, err := h.db.LibrarySettings(library)
		if err != nil {
			logging.Error("failed to load settings for library %q: %v", library, err)
			h.writeError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		if found {
			h.writeJSON(w, http.StatusOK, map[string]interface{}{
				"library":  library,
				"settings": s,
				"stored":   true,
			})
			return
		}
	}

	s, found, err := h.db.LastUsed()
	if err != nil {
		logging.Error("failed to load last-used settings: %v", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"library":  library,
		"settings": s,
		"stored":   found,
	})
}

// SaveSettings stores the settings for a library and updates the usage
// history.
func (h *Handlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req saveSettingsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid settings: "+err.Error())
		return
	}

	if err := h.db.SaveSettings(req.Library, req.Settings); err != nil {
		logging.Error("failed to save settings for library %q: %v", req.Library, err)
		h.writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// GetHistory returns known servers, configured libraries and recent runs.
func (h *Handlers) GetHistory(w http.ResponseWriter, _ *http.Request) {
	servers, libraries, err := h.db.History()
	if err != nil {
		logging.Error("failed to load history: %v", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	runs, err := h.db.RecentRuns(50)
	if err != nil {
		logging.Error("failed to load run history: %v", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"servers":   servers,
		"libraries": libraries,
		"runs":      runs,
	})
}
