package httptransport

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nyumba/internal/moderation/models"
	"nyumba/internal/transport/http/json"
	"nyumba/internal/transport/http/shared"
	dErrors "nyumba/pkg/domain-errors"
)

type propertyResponse struct {
	Title      string `json:"title"`
	Address    string `json:"address"`
	City       string `json:"city"`
	OwnerName  string `json:"ownerName"`
	OwnerEmail string `json:"ownerEmail"`
	OwnerPhone string `json:"ownerPhone"`
}

type imageResponse struct {
	ID              string           `json:"id"`
	PropertyID      string           `json:"propertyId"`
	ImageURL        string           `json:"imageUrl"`
	ThumbnailURL    *string          `json:"thumbnailUrl,omitempty"`
	Caption         *string          `json:"caption,omitempty"`
	Primary         bool             `json:"isPrimary"`
	DisplayOrder    int              `json:"displayOrder"`
	CreatedAt       time.Time        `json:"createdAt"`
	Approved        *bool            `json:"adminApproved"`
	ReviewedAt      *time.Time       `json:"adminReviewedAt,omitempty"`
	ReviewedBy      *string          `json:"adminReviewedBy,omitempty"`
	RejectionReason *string          `json:"adminRejectionReason,omitempty"`
	Comment         *string          `json:"adminComment,omitempty"`
	Property        propertyResponse `json:"property"`
}

type approveRequest struct {
	Comment *string `json:"comment"`
}

type rejectRequest struct {
	Reason  string  `json:"reason"`
	Comment *string `json:"comment"`
}

type bulkApproveRequest struct {
	ImageIDs []string `json:"imageIds"`
}

type selectionRequest struct {
	Action   string   `json:"action"`
	ImageIDs []string `json:"imageIds"`
}

func toImageResponse(img models.ImageRecord) imageResponse {
	resp := imageResponse{
		ID:              img.ID.String(),
		PropertyID:      img.PropertyID.String(),
		ImageURL:        img.ImageURL,
		ThumbnailURL:    img.ThumbnailURL,
		Caption:         img.Caption,
		Primary:         img.Primary,
		DisplayOrder:    img.DisplayOrder,
		CreatedAt:       img.CreatedAt,
		Approved:        img.Approved,
		ReviewedAt:      img.ReviewedAt,
		RejectionReason: img.RejectionReason,
		Comment:         img.Comment,
		Property: propertyResponse{
			Title:      img.Property.Title,
			Address:    img.Property.Address,
			City:       img.Property.City,
			OwnerName:  img.Property.OwnerName,
			OwnerEmail: img.Property.OwnerEmail,
			OwnerPhone: img.Property.OwnerPhone,
		},
	}
	if img.ReviewedBy != nil {
		reviewedBy := img.ReviewedBy.String()
		resp.ReviewedBy = &reviewedBy
	}
	return resp
}

func toImageResponses(images []models.ImageRecord) []imageResponse {
	out := make([]imageResponse, len(images))
	for i, img := range images {
		out[i] = toImageResponse(img)
	}
	return out
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	images, err := h.moderation.ListPending(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]any{"images": toImageResponses(images)})
}

func (h *Handler) handleListReviewed(w http.ResponseWriter, r *http.Request) {
	images, err := h.moderation.ListReviewed(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]any{"images": toImageResponses(images)})
}

func (h *Handler) handleListImages(w http.ResponseWriter, r *http.Request) {
	filter := models.ParseFilter(r.URL.Query().Get("filter"))
	images, err := h.moderation.ListFiltered(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]any{
		"filter": string(filter),
		"images": toImageResponses(images),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.moderation.Stats(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid image id"))
		return
	}

	// The body is optional; an approval needs no comment.
	var req approveRequest
	if err := json.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		json.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return
	}

	if err := h.moderation.Approve(r.Context(), imageID, req.Comment); err != nil {
		shared.WriteError(w, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid image id"))
		return
	}

	var req rejectRequest
	if err := json.Decode(r, &req); err != nil {
		json.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return
	}

	if err := h.moderation.Reject(r.Context(), imageID, req.Reason, req.Comment); err != nil {
		shared.WriteError(w, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleBulkApprove approves the posted batch, falling back to the held
// selection when the body names no ids. A successful bulk action always
// clears the selection.
func (h *Handler) handleBulkApprove(w http.ResponseWriter, r *http.Request) {
	var req bulkApproveRequest
	if err := json.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		json.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return
	}

	var imageIDs []uuid.UUID
	if len(req.ImageIDs) > 0 {
		imageIDs = make([]uuid.UUID, 0, len(req.ImageIDs))
		for _, raw := range req.ImageIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid image id in batch"))
				return
			}
			imageIDs = append(imageIDs, id)
		}
	} else {
		imageIDs = h.selection.Selected()
	}

	if err := h.moderation.BulkApprove(r.Context(), imageIDs); err != nil {
		shared.WriteError(w, err)
		return
	}

	h.selection.Clear()
	json.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"approved": len(imageIDs),
	})
}

func (h *Handler) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	h.writeSelection(w)
}

// handleUpdateSelection mutates the held selection. The toggleAll action
// takes the currently visible ids: a fully selected page clears, anything
// less selects the rest.
func (h *Handler) handleUpdateSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.Decode(r, &req); err != nil {
		json.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ImageIDs))
	for _, raw := range req.ImageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid image id in selection"))
			return
		}
		ids = append(ids, id)
	}

	switch req.Action {
	case "select":
		for _, id := range ids {
			h.selection.Select(id)
		}
	case "deselect":
		for _, id := range ids {
			h.selection.Deselect(id)
		}
	case "toggle":
		for _, id := range ids {
			h.selection.Toggle(id)
		}
	case "toggleAll":
		h.selection.ToggleAll(ids)
	case "clear":
		h.selection.Clear()
	default:
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown selection action"))
		return
	}

	h.writeSelection(w)
}

func (h *Handler) writeSelection(w http.ResponseWriter) {
	selected := h.selection.Selected()
	ids := make([]string, len(selected))
	for i, id := range selected {
		ids[i] = id.String()
	}
	json.WriteJSON(w, http.StatusOK, map[string]any{
		"selected": ids,
		"count":    len(ids),
	})
}
