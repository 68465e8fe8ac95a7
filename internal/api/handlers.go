package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/leadcrm/internal/export"
	"github.com/sells-group/leadcrm/internal/extract"
	"github.com/sells-group/leadcrm/internal/model"
	"github.com/sells-group/leadcrm/internal/provider"
	"github.com/sells-group/leadcrm/internal/store"
)

type extractRequest struct {
	Text string `json:"text"`
	ID   string `json:"id"`
}

type batchRequest struct {
	Text string `json:"text"`
}

type batchFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type batchResponse struct {
	RunID     string         `json:"run_id"`
	Total     int            `json:"total"`
	Succeeded []string       `json:"succeeded"`
	Failed    []batchFailure `json:"failed"`
}

type editRequest struct {
	Status *string  `json:"status"`
	Value  *float64 `json:"value"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listLeads(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		want := model.NormalizeStatus(status)
		filtered := recs[:0]
		for _, rec := range recs {
			if rec.Status == want {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}
	if recs == nil {
		recs = []model.LeadRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.store.Aggregate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	if err := export.WriteCSV(w, recs); err != nil {
		zap.L().Error("api: write csv", zap.Error(err))
	}
}

func (h *Handler) extractLead(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeMessage(w, http.StatusBadRequest, "text is required")
		return
	}

	rec, err := h.extractor.Process(r.Context(), h.store, req.Text, strings.TrimSpace(req.ID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) extractBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.extractor.ProcessBatch(r.Context(), h.store, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := batchResponse{
		RunID:     res.RunID.String(),
		Total:     res.Total,
		Succeeded: res.Succeeded,
		Failed:    make([]batchFailure, 0, len(res.Failed)),
	}
	if resp.Succeeded == nil {
		resp.Succeeded = []string{}
	}
	for _, f := range res.Failed {
		resp.Failed = append(resp.Failed, batchFailure{ID: f.ID, Error: f.Err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) editLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req editRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := store.Find(r.Context(), h.store, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Status != nil {
		rec.Status = model.NormalizeStatus(*req.Status)
	}
	if req.Value != nil {
		rec.Value = *req.Value
	}
	if err := h.store.Upsert(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var perr *provider.ProviderError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, extract.ErrMalformedResponse), errors.Is(err, extract.ErrNoDelimitersFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, extract.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &perr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("api: request failed", zap.Int("status", status), zap.Error(err))
	}
	writeMessage(w, status, err.Error())
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}
