package transport

import (
	"net/http"

	"vinestore-be/internal/user"
)

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email            string `json:"email"`
		Password         string `json:"password"`
		Role             string `json:"role"`
		OrdersPermission bool   `json:"orders_permission"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.users.Create(r.Context(), user.CreateUserParams{
		Email:            body.Email,
		Password:         body.Password,
		Role:             body.Role,
		OrdersPermission: body.OrdersPermission,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email            string  `json:"email"`
		Role             *string `json:"role"`
		OrdersPermission *bool   `json:"orders_permission"`
		Password         *string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.users.UpdateByEmail(r.Context(), body.Email, user.UpdateUserParams{
		Role:             body.Role,
		OrdersPermission: body.OrdersPermission,
		Password:         body.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
