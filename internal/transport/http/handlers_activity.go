package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"nyumba/internal/activity"
	"nyumba/internal/transport/http/json"
	"nyumba/internal/transport/http/shared"
)

type activityResponse struct {
	ID           string         `json:"id"`
	AdminID      string         `json:"adminId"`
	ActivityType string         `json:"activityType"`
	Description  string         `json:"description"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			json.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
			return
		}
		limit = parsed
	}

	entries, err := h.moderation.Activity(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]activityResponse, len(entries))
	for i, entry := range entries {
		out[i] = toActivityResponse(entry)
	}
	json.WriteJSON(w, http.StatusOK, map[string]any{"activities": out})
}

func toActivityResponse(entry activity.Entry) activityResponse {
	return activityResponse{
		ID:           entry.ID.String(),
		AdminID:      entry.AdminID.String(),
		ActivityType: string(entry.Type),
		Description:  entry.Description,
		Metadata:     entry.Metadata,
		CreatedAt:    entry.CreatedAt,
	}
}
