package transport

import (
	"net/http"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/middleware"
)

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.users.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    res.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   24 * 60 * 60,
	})
	writeJSON(w, http.StatusOK, res)
}

// handleVerifyPermission re-validates the caller against the live
// permission flag. Failures are uniform: the response never says whether the
// account is unknown or merely ungranted.
func (h *Handler) handleVerifyPermission(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractAccessToken(r)
	if token == "" {
		writeError(w, r, apperr.New(apperr.Auth, "authentication required"))
		return
	}

	u, err := h.users.VerifyPermission(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hasPermission": true,
		"email":         u.Email,
		"role":          u.Role,
	})
}
