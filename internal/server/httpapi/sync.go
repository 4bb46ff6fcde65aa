package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dmitrijs2005/tripsync/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// savePayload is the POST body: the domain payload wrapped in a data field.
type savePayload struct {
	Data json.RawMessage `json:"data"`
}

type getResponse struct {
	Success bool                    `json:"success"`
	Devices []services.DeviceRecord `json:"devices,omitempty"`
	Legacy  json.RawMessage         `json:"legacy,omitempty"`
}

type bulkResponse struct {
	Success bool                          `json:"success"`
	Data    map[string]*services.Envelope `json:"data"`
}

// Save upserts one device's payload for a data type.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	deviceID := chi.URLParam(r, "deviceID")
	dataType := chi.URLParam(r, "dataType")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "failed to read body", h.log)
		return
	}

	var req savePayload
	if err := json.Unmarshal(body, &req); err != nil || len(req.Data) == 0 {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", h.log)
		return
	}

	if err := h.sync.Save(ctx, userID, deviceID, dataType, req.Data); err != nil {
		h.log.Error(ctx, "save failed", "dataType", dataType, "error", err)
		writeError(ctx, w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"success": true}, h.log)
}

// Get returns every device record for one data type, plus the legacy blob
// when the account predates multi-device support.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	dataType := chi.URLParam(r, "dataType")

	env, err := h.sync.Get(ctx, userID, dataType)
	if err != nil {
		h.log.Error(ctx, "get failed", "dataType", dataType, "error", err)
		writeError(ctx, w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	writeJSON(ctx, w, http.StatusOK, getResponse{Success: true, Devices: env.Devices, Legacy: env.Legacy}, h.log)
}

// Delete removes one device's record for a data type.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	deviceID := chi.URLParam(r, "deviceID")
	dataType := chi.URLParam(r, "dataType")

	if err := h.sync.Delete(ctx, userID, deviceID, dataType); err != nil {
		h.log.Error(ctx, "delete failed", "dataType", dataType, "error", err)
		writeError(ctx, w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"success": true}, h.log)
}

// GetAll returns all data types' envelopes in one response.
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	data, err := h.sync.GetAll(ctx, userID)
	if err != nil {
		h.log.Error(ctx, "bulk get failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "internal error", h.log)
		return
	}

	writeJSON(ctx, w, http.StatusOK, bulkResponse{Success: true, Data: data}, h.log)
}

// DeleteAll wipes every record the user has.
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	if err := h.sync.DeleteAll(ctx, userID); err != nil {
		h.log.Error(ctx, "bulk delete failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "internal error", h.log)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"success": true}, h.log)
}
