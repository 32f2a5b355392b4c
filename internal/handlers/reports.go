package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"pixelfin/internal/archive"
	"pixelfin/internal/artwork"
	"pixelfin/internal/database"
	"pixelfin/internal/logging"
	"pixelfin/internal/report"
	"pixelfin/internal/runner"
)

// slotSelection names one slot for ZIP export, using artwork short codes.
type slotSelection struct {
	ItemID string `json:"itemId" validate:"required"`
	Type   string `json:"type" validate:"required,oneof=p t c m bd bn b br d l"`
	Index  int    `json:"index" validate:"min=0"`
}

// triggerRequest is the POST /api/reports payload.
type triggerRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=html zip"`
	Server  string `json:"server" validate:"required,url"`
	APIKey  string `json:"apikey" validate:"required"`
	Library string `json:"library" validate:"required"`

	Images    []string `json:"images" validate:"required,min=1,dive,oneof=p t c m bd bn b br d l"`
	MinWidth  int      `json:"minWidth" validate:"min=0"`
	MinHeight int      `json:"minHeight" validate:"min=0"`

	BGColor      string `json:"bgcolor" validate:"omitempty,hexcolor"`
	TextColor    string `json:"textcolor" validate:"omitempty,hexcolor"`
	TableBGColor string `json:"tablebgcolor" validate:"omitempty,hexcolor"`

	Embedded      bool `json:"embedded"`
	EmbedMaxWidth int  `json:"embedMaxWidth" validate:"min=0"`

	ZipNames   map[string]string `json:"zipnames"`
	Selections []slotSelection   `json:"selections" validate:"dive"`

	// Save persists this configuration as the library's settings and the
	// last-used record before the run starts.
	Save bool `json:"save"`
}

func (req *triggerRequest) runConfig(defaultEmbedWidth int) runner.Config {
	types := make([]artwork.Type, 0, len(req.Images))
	for _, code := range req.Images {
		if t, ok := artwork.ParseCode(code); ok {
			types = append(types, t)
		}
	}

	colors := report.DefaultColors()
	if req.BGColor != "" {
		colors.Background = req.BGColor
	}
	if req.TextColor != "" {
		colors.Text = req.TextColor
	}
	if req.TableBGColor != "" {
		colors.TableBackground = req.TableBGColor
	}

	embedWidth := req.EmbedMaxWidth
	if embedWidth == 0 {
		embedWidth = defaultEmbedWidth
	}

	baseNames := make(map[artwork.Type]string, len(req.ZipNames))
	for code, name := range req.ZipNames {
		if t, ok := artwork.ParseCode(code); ok && name != "" {
			baseNames[t] = name
		}
	}

	selections := make([]archive.Selection, 0, len(req.Selections))
	for _, sel := range req.Selections {
		if t, ok := artwork.ParseCode(sel.Type); ok {
			selections = append(selections, archive.Selection{ItemID: sel.ItemID, Type: t, Index: sel.Index})
		}
	}

	return runner.Config{
		Server:        req.Server,
		APIKey:        req.APIKey,
		Library:       req.Library,
		Types:         types,
		Thresholds:    artwork.Thresholds{MinWidth: req.MinWidth, MinHeight: req.MinHeight},
		Colors:        colors,
		Embedded:      req.Embedded,
		EmbedMaxWidth: embedWidth,
		ZipBaseNames:  baseNames,
		Selections:    selections,
	}
}

func (req *triggerRequest) settings() database.Settings {
	return database.Settings{
		Server:        req.Server,
		APIKey:        req.APIKey,
		Images:        req.Images,
		MinWidth:      req.MinWidth,
		MinHeight:     req.MinHeight,
		ZipNames:      req.ZipNames,
		BGColor:       req.BGColor,
		TextColor:     req.TextColor,
		TableBGColor:  req.TableBGColor,
		Embedded:      req.Embedded,
		EmbedMaxWidth: req.EmbedMaxWidth,
	}
}

// TriggerReport validates a run request and starts it in the background.
// Responds 202 with the run id, 409 when a run is already active.
func (h *Handlers) TriggerReport(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid run request: "+err.Error())
		return
	}

	if req.Save {
		if err := h.db.SaveSettings(req.Library, req.settings()); err != nil {
			// A failed save should not block the run itself.
			logging.Error("failed to persist settings for library %q: %v", req.Library, err)
		}
	}

	runID, err := h.runner.Start(runner.Kind(req.Kind), req.runConfig(h.config.EmbedMaxWidth))
	switch {
	case errors.Is(err, runner.ErrRunActive):
		h.writeError(w, http.StatusConflict, "a run is already in progress")
		return
	case errors.Is(err, runner.ErrInvalidConfig):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logging.Error("failed to start run: %v", err)
		h.writeError(w, http.StatusInternalServerError, "failed to start run")
		return
	}

	logging.Info("started %s run %s for library %q", req.Kind, runID, req.Library)
	h.writeJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

// GetReport returns the status record of one run.
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, found, err := h.db.Run(id)
	if err != nil {
		logging.Error("failed to load run %s: %v", id, err)
		h.writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if !found {
		h.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}
