package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apex-platform/tf-forge/internal/api/types"
	"github.com/apex-platform/tf-forge/internal/api/validators"
	"github.com/apex-platform/tf-forge/internal/services"
)

// TerraformHandler exposes the generation trigger and the per-user status
// history.
type TerraformHandler struct {
	svc services.GenerationService
}

func NewTerraformHandler(svc services.GenerationService) *TerraformHandler {
	return &TerraformHandler{svc: svc}
}

func (h *TerraformHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Generate(r.Context(), services.GenerateInput{
		Username:     req.Username,
		CloudID:      req.CloudID,
		ResourceType: req.ResourceType,
		RequestID:    req.RequestID,
	})
	if err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data: types.GenerateResponse{
			Message:      "terraform generated and merge request created",
			MergeRequest: result.MergeRequest,
		},
	})
}

func (h *TerraformHandler) History(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeErrorStr(w, http.StatusBadRequest, "username is required")
		return
	}

	records, err := h.svc.History(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    records,
		Meta:    &types.Meta{Total: int64(len(records))},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: "invalid", Message: msg}})
}
