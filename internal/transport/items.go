package transport

import (
	"net/http"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/item"
	"vinestore-be/internal/storage"

	"github.com/shopspring/decimal"
)

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type itemBody struct {
	Name           *string          `json:"name"`
	CategoryID     *string          `json:"category_id"`
	Price          *decimal.Decimal `json:"price"`
	HasCustomPrice *bool            `json:"has_custom_price"`
	ImageURL       *string          `json:"image_url"`
	IsActive       *bool            `json:"is_active"`
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var body itemBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	params := item.CreateItemParams{Price: body.Price, ImageURL: body.ImageURL}
	if body.Name != nil {
		params.Name = *body.Name
	}
	if body.CategoryID != nil {
		params.CategoryID = *body.CategoryID
	}
	if body.HasCustomPrice != nil {
		params.HasCustomPrice = *body.HasCustomPrice
	}

	it, err := h.items.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, apperr.New(apperr.Validation, "item ID is required"))
		return
	}

	var body itemBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	it, err := h.items.Update(r.Context(), item.UpdateItemParams{
		ID:             id,
		Name:           body.Name,
		CategoryID:     body.CategoryID,
		Price:          body.Price,
		HasCustomPrice: body.HasCustomPrice,
		ImageURL:       body.ImageURL,
		IsActive:       body.IsActive,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, apperr.New(apperr.Validation, "item ID is required"))
		return
	}

	if err := h.items.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// handleUploadImage accepts a multipart form with an "image" part and
// returns the stored public URL.
func (h *Handler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+4096)
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		writeError(w, r, apperr.Wrap(apperr.Validation, "image must be 5MB or smaller", err))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, apperr.Wrap(apperr.Validation, "image file is required", err))
		return
	}
	defer file.Close()

	url, err := h.store.Save(r.Context(), file, header.Filename,
		header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
