package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"pixelfin/internal/database"
	"pixelfin/internal/logging"
	"pixelfin/internal/runner"
	"pixelfin/internal/startup"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	db       *database.Database
	runner   *runner.Runner
	config   *startup.Config
	validate *validator.Validate
}

// New creates a new Handlers instance.
func New(db *database.Database, run *runner.Runner, config *startup.Config) *Handlers {
	return &Handlers{
		db:       db,
		runner:   run,
		config:   config,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes attaches all application routes to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/settings", h.GetSettings).Methods(http.MethodGet)
	r.HandleFunc("/api/settings", h.SaveSettings).Methods(http.MethodPost)
	r.HandleFunc("/api/history", h.GetHistory).Methods(http.MethodGet)

	r.HandleFunc("/api/reports", h.TriggerReport).Methods(http.MethodPost)
	r.HandleFunc("/api/reports/{id}", h.GetReport).Methods(http.MethodGet)

	r.HandleFunc("/api/outputs", h.ListOutputs).Methods(http.MethodGet)
	r.HandleFunc("/api/outputs/{library}/{filename}", h.DeleteOutput).Methods(http.MethodDelete)
	r.HandleFunc("/output/{library}/{filename}", h.ServeOutput).Methods(http.MethodGet)
	r.HandleFunc("/download/{library}/{filename}", h.DownloadOutput).Methods(http.MethodGet)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.Livez).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Readyz).Methods(http.MethodGet)
	r.HandleFunc("/api/version", h.Version).Methods(http.MethodGet)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a request body, rejecting unknown fields so typoed
// settings keys fail loudly instead of silently resetting defaults.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// Health returns overall service health including database reachability.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.db.Ping(); err != nil {
		logging.Error("health check database ping failed: %v", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"runActive": h.runner.Active(),
	})
}

// Livez is the liveness probe.
func (h *Handlers) Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok")) //nolint:errcheck
}

// Readyz is the readiness probe; the service is ready once the database
// answers.
func (h *Handlers) Readyz(w http.ResponseWriter, _ *http.Request) {
	if err := h.db.Ping(); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok")) //nolint:errcheck
}

// Version returns build information.
func (h *Handlers) Version(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, startup.GetBuildInfo())
}
