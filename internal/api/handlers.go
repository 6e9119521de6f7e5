// Package api exposes HTTP handlers for the training service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jimiryquai/training-manager/internal/auth"
	"github.com/jimiryquai/training-manager/internal/domain"
	"github.com/jimiryquai/training-manager/internal/observability"
)

const (
	defaultHistoryDays = 28
	minHistoryDays     = 7
	maxHistoryDays     = 90
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	today   func() domain.Day
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{
		service: service,
		today:   func() domain.Day { return domain.DayOf(time.Now()) },
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/readiness", h.readiness)
	mux.HandleFunc("/v1/acwr", h.acwr)
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/wellness", h.wellness)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeTrainingRead)
	if !ok {
		return
	}

	query := r.URL.Query()
	asOf, err := h.dateParam(query.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	historyDays := defaultHistoryDays
	if raw := query.Get("history_days"); raw != "" {
		parsed, convErr := strconv.Atoi(raw)
		if convErr != nil || parsed < minHistoryDays || parsed > maxHistoryDays {
			writeError(w, http.StatusBadRequest, "validation_failed", "history_days must be an integer between 7 and 90")
			return
		}
		historyDays = parsed
	}

	flatten, _ := strconv.ParseBool(query.Get("flatten"))

	start := time.Now()
	result, err := h.service.Readiness(r.Context(), domain.ReadinessQuery{
		Identity:    claims.Identity(),
		AsOf:        asOf,
		HistoryDays: historyDays,
		Select:      parseSelect(query),
		Flatten:     flatten,
	})
	observability.ObserveReadinessQuery(time.Since(start), err)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if result.Current.IsDanger {
		observability.RecordReadinessDanger()
	}
	writeJSON(w, http.StatusOK, result.Record)
}

func (h *Handler) acwr(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeTrainingRead)
	if !ok {
		return
	}

	date, err := h.dateParam(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	result, err := h.service.ACWR(r.Context(), claims.Identity(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ACWRResponse{
		Date:        date,
		AcuteLoad:   result.AcuteLoad,
		ChronicLoad: result.ChronicLoad,
		Ratio:       result.Ratio,
		IsDanger:    result.IsDanger,
	})
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeTrainingWrite)
	if !ok {
		return
	}

	var req LogWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	session, err := h.service.LogWorkoutSession(r.Context(), domain.LogWorkoutInput{
		TenantID:          claims.TenantID,
		UserID:            claims.Subject,
		Date:              req.Date,
		Modality:          domain.Modality(req.Modality),
		DurationMinutes:   req.DurationMinutes,
		PerceivedExertion: req.SRPE,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidModality) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toWorkoutView(*session))
}

func (h *Handler) wellness(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.recordWellness(w, r)
	case http.MethodGet:
		h.getWellness(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) recordWellness(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeTrainingWrite)
	if !ok {
		return
	}

	var req RecordWellnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	sample, err := h.service.RecordWellness(r.Context(), domain.RecordWellnessInput{
		TenantID:             claims.TenantID,
		UserID:               claims.Subject,
		Date:                 req.Date,
		RestingHeartRate:     req.RHR,
		HeartRateVariability: req.HRVRmssd,
		SleepScore:           req.SleepScore,
		FatigueScore:         req.FatigueScore,
		MuscleSorenessScore:  req.MuscleSorenessScore,
		StressScore:          req.StressScore,
		MoodScore:            req.MoodScore,
		DietScore:            req.DietScore,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toWellnessView(*sample))
}

func (h *Handler) getWellness(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeTrainingRead)
	if !ok {
		return
	}

	date, err := h.dateParam(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	sample, err := h.service.GetWellness(r.Context(), claims.Identity(), date)
	if err != nil {
		if errors.Is(err, domain.ErrWellnessNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no wellness sample for "+date.String())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toWellnessView(*sample))
}

// requireScope writes the 401/403 response itself when the caller lacks scope.
// Write access implies read access.
func requireScope(w http.ResponseWriter, r *http.Request, scope string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if claims.HasScope(scope) || (scope == auth.ScopeTrainingRead && claims.HasScope(auth.ScopeTrainingWrite)) {
		return claims, true
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
	return nil, false
}

// dateParam parses a YYYY-MM-DD query value, defaulting to today.
func (h *Handler) dateParam(raw string) (domain.Day, error) {
	if strings.TrimSpace(raw) == "" {
		return h.today(), nil
	}
	return domain.ParseDay(raw)
}

// parseSelect returns nil when select is absent, so every field is returned,
// and an empty slice when it is present but blank.
func parseSelect(query map[string][]string) []string {
	raw, ok := query["select"]
	if !ok {
		return nil
	}
	paths := make([]string, 0)
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				paths = append(paths, part)
			}
		}
	}
	return paths
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
