package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"smarttender/internal/auth"
	"smarttender/models"
)

const maxUploadSize = 10 << 20

// CreateTenderHandler handles POST /api/tenders. The request is multipart:
// scalar fields plus JSON-encoded parallel arrays and an optional document.
func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	tender := models.Tender{
		Email:       r.FormValue("email"),
		Title:       r.FormValue("title"),
		Eligibility: r.FormValue("eligibility"),
		Description: r.FormValue("description"),
		Type:        r.FormValue("type"),
	}
	if p, ok := auth.FromContext(r.Context()); ok {
		tender.Email = p.Email
	}

	var err error
	if tender.StartDate, err = parseDate(r.FormValue("startDate")); err != nil {
		http.Error(w, "Invalid startDate", http.StatusBadRequest)
		return
	}
	if tender.EndDate, err = parseDate(r.FormValue("endDate")); err != nil {
		http.Error(w, "Invalid endDate", http.StatusBadRequest)
		return
	}

	if err := json.Unmarshal([]byte(r.FormValue("materials")), &tender.Materials); err != nil {
		http.Error(w, "materials must be a JSON array of strings", http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal([]byte(r.FormValue("quantities")), &tender.Quantities); err != nil {
		http.Error(w, "quantities must be a JSON array of integers", http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal([]byte(r.FormValue("proposedAmounts")), &tender.ProposedAmounts); err != nil {
		http.Error(w, "proposedAmounts must be a JSON array of numbers", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(&tender); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tender.ValidateLineItems(); err != nil {
		h.respondError(w, r, err)
		return
	}

	if file, header, err := r.FormFile("document"); err == nil {
		defer file.Close()
		key, err := h.Files.Upload(r.Context(), header.Filename, file, header.Size,
			header.Header.Get("Content-Type"))
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		tender.DocumentKey = key
	}

	tender.Refresh(time.Now())
	if err := h.Store.CreateTender(r.Context(), &tender); err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tender)
}

// GetTendersHandler handles GET /api/tenders.
func (h *Handler) GetTendersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	tenders, err := h.Store.GetTenders(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	now := time.Now()
	for i := range tenders {
		tenders[i].Refresh(now)
	}
	writeJSON(w, http.StatusOK, tenders)
}

// GetTenderByIDHandler handles GET /api/tenders/id/{tenderId}. The response
// carries a presigned document link when an attachment exists.
func (h *Handler) GetTenderByIDHandler(w http.ResponseWriter, r *http.Request) {
	tenderID := chi.URLParam(r, "tenderId")

	tender, err := h.Store.GetTender(r.Context(), tenderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	tender.Refresh(time.Now())

	var documentURL string
	if tender.DocumentKey != "" {
		if u, err := h.Files.PresignedURL(r.Context(), tender.DocumentKey); err == nil {
			documentURL = u
		}
	}

	writeJSON(w, http.StatusOK, struct {
		models.Tender
		DocumentURL string `json:"documentUrl,omitempty"`
	}{Tender: *tender, DocumentURL: documentURL})
}

// GetTendersByEmailHandler handles GET /api/tenders/email/{email}.
func (h *Handler) GetTendersByEmailHandler(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		http.Error(w, "Missing email", http.StatusBadRequest)
		return
	}

	tenders, err := h.Store.GetTendersByEmail(r.Context(), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	now := time.Now()
	for i := range tenders {
		tenders[i].Refresh(now)
	}
	writeJSON(w, http.StatusOK, tenders)
}

// UpdateTenderHandler handles PUT /api/tenders/{tenderId}. Line items are
// replaced wholesale; partial edits of the arrays are not supported.
func (h *Handler) UpdateTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID := chi.URLParam(r, "tenderId")

	tender, err := h.Store.GetTender(r.Context(), tenderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var input struct {
		Title           *string    `json:"title"`
		Eligibility     *string    `json:"eligibility"`
		Description     *string    `json:"description"`
		Type            *string    `json:"type"`
		StartDate       *time.Time `json:"startDate"`
		EndDate         *time.Time `json:"endDate"`
		Materials       []string   `json:"materials"`
		Quantities      []int64    `json:"quantities"`
		ProposedAmounts []float64  `json:"proposedAmounts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if input.Title != nil {
		tender.Title = *input.Title
	}
	if input.Eligibility != nil {
		tender.Eligibility = *input.Eligibility
	}
	if input.Description != nil {
		tender.Description = *input.Description
	}
	if input.Type != nil {
		tender.Type = *input.Type
	}
	if input.StartDate != nil {
		tender.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tender.EndDate = *input.EndDate
	}
	if input.Materials != nil || input.Quantities != nil || input.ProposedAmounts != nil {
		tender.Materials = pq.StringArray(input.Materials)
		tender.Quantities = pq.Int64Array(input.Quantities)
		tender.ProposedAmounts = pq.Float64Array(input.ProposedAmounts)
	}

	if err := h.validate.Struct(tender); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tender.ValidateLineItems(); err != nil {
		h.respondError(w, r, err)
		return
	}

	tender.Refresh(time.Now())
	if err := h.Store.UpdateTender(r.Context(), tender); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tender)
}

// DeleteTenderHandler handles DELETE /api/tenders/{tenderId}. Deletion is
// administrator-triggered and irreversible; the attached document is removed
// best effort.
func (h *Handler) DeleteTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID := chi.URLParam(r, "tenderId")

	tender, err := h.Store.GetTender(r.Context(), tenderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Store.DeleteTender(r.Context(), tenderID); err != nil {
		h.respondError(w, r, err)
		return
	}

	if tender.DocumentKey != "" {
		if err := h.Files.Delete(r.Context(), tender.DocumentKey); err != nil {
			h.Log.Warn("failed to delete tender document",
				zap.String("tenderId", tenderID),
				zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Tender deleted"})
}
