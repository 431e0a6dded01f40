package transport

import (
	"net/http"
	"strconv"

	"vinestore-be/internal/apperr"
)

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var month, year *int
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, apperr.New(apperr.Validation, "month must be a number"))
			return
		}
		month = &n
	}
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, apperr.New(apperr.Validation, "year must be a number"))
			return
		}
		year = &n
	}

	rep, err := h.reports.Generate(r.Context(), month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
