package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	"study-aid-service/internal/app"
	"study-aid-service/internal/domain"
	"study-aid-service/internal/ingest"
)

// APIHandler exposes the study flow over JSON.
type APIHandler struct {
	service  *app.StudyService
	log      *zap.Logger
	maxBytes int64
}

func NewAPIHandler(service *app.StudyService, maxUploadBytes int64, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = ingest.DefaultMaxBytes
	}
	return &APIHandler{service: service, log: log, maxBytes: maxUploadBytes}
}

// Register mounts every route on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("POST /api/sessions/{id}/document", h.submitDocument)
	mux.HandleFunc("POST /api/sessions/{id}/generate", h.generate)
	mux.HandleFunc("POST /api/sessions/{id}/quiz", h.completeQuiz)
	mux.HandleFunc("POST /api/sessions/{id}/new", h.startNewDocument)
	mux.HandleFunc("POST /api/sessions/{id}/navigate", h.navigate)
	mux.HandleFunc("GET /api/studysets", h.studySets)
	mux.HandleFunc("GET /api/analytics", h.analytics)
	mux.HandleFunc("GET /api/preferences", h.preferences)
	mux.HandleFunc("PUT /api/preferences", h.updatePreferences)
	mux.HandleFunc("POST /api/preferences/theme/toggle", h.toggleTheme)
}

type generateRequest struct {
	Kind  domain.GenerationKind `json:"kind"`
	Count int                   `json:"count"`
}

type quizRequest struct {
	Score   *int     `json:"score"`
	Answers []string `json:"answers"`
}

type quizResponse struct {
	Score    int          `json:"score"`
	Snapshot app.Snapshot `json:"snapshot"`
}

type navigateRequest struct {
	View domain.View `json:"view"`
}

type preferencesRequest struct {
	Theme           *domain.Theme `json:"theme"`
	GenerationCount *int          `json:"generationCount"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (h *APIHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) createSession(w http.ResponseWriter, r *http.Request) {
	snap := h.service.CreateSession(r.Context(), r.URL.Query().Get("owner"))
	writeJSON(w, http.StatusCreated, snap)
}

func (h *APIHandler) getSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), r.PathValue("id"))
	h.respond(w, snap, err)
}

func (h *APIHandler) submitDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing multipart file field \"file\"")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	snap, err := h.service.SubmitFile(r.Context(), r.PathValue("id"), header.Filename, data)
	h.respond(w, snap, err)
}

func (h *APIHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := h.service.RequestGeneration(r.Context(), r.PathValue("id"), req.Kind, req.Count)
	h.respond(w, snap, err)
}

func (h *APIHandler) completeQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if req.Score != nil {
		snap, err := h.service.CompleteQuiz(r.Context(), id, *req.Score)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quizResponse{Score: *req.Score, Snapshot: snap})
		return
	}
	if req.Answers == nil {
		writeError(w, http.StatusBadRequest, "score or answers required")
		return
	}
	snap, score, err := h.service.SubmitQuizAnswers(r.Context(), id, req.Answers)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{Score: score, Snapshot: snap})
}

func (h *APIHandler) startNewDocument(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.StartNewDocument(r.Context(), r.PathValue("id"))
	h.respond(w, snap, err)
}

func (h *APIHandler) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := h.service.Navigate(r.Context(), r.PathValue("id"), req.View)
	h.respond(w, snap, err)
}

func (h *APIHandler) studySets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.service.StudySets(r.Context(), r.URL.Query().Get("owner"))
	h.respond(w, sets, err)
}

func (h *APIHandler) analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Analytics(r.Context(), r.URL.Query().Get("owner"))
	h.respond(w, a, err)
}

func (h *APIHandler) preferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Preferences(r.Context(), r.URL.Query().Get("owner"))
	h.respond(w, p, err)
}

func (h *APIHandler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.service.UpdatePreferences(r.Context(), r.URL.Query().Get("owner"), req.Theme, req.GenerationCount)
	h.respond(w, p, err)
}

func (h *APIHandler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.ToggleTheme(r.Context(), r.URL.Query().Get("owner"))
	h.respond(w, p, err)
}

func (h *APIHandler) respond(w http.ResponseWriter, body any, err error) {
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *APIHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var ufe *domain.UnsupportedFormatError
	switch {
	case errors.As(err, &ufe):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrIngestion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrGenerationInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyDocument),
		errors.Is(err, domain.ErrInvalidScore),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrUnknownView):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}
