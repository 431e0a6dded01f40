package transport

import (
	"net/http"

	"vinestore-be/internal/access"
)

func (h *Handler) handleSubmitAccessRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string  `json:"email"`
		FullName string  `json:"full_name"`
		Reason   *string `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	req, err := h.access.Submit(r.Context(), access.SubmitParams{
		Email:    body.Email,
		FullName: body.FullName,
		Reason:   body.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) handleListAccessRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.access.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) handleReviewAccessRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID  string  `json:"requestId"`
		Action     string  `json:"action"`
		AdminNotes *string `json:"adminNotes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.access.Review(r.Context(), body.RequestID, body.Action, body.AdminNotes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
