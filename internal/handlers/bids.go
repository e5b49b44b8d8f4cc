package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"smarttender/models"
)

// CreateBidHandler handles POST /api/bids. The request is multipart: bidder
// fields, a JSON-encoded proposedAmounts array aligned to the tender's line
// items, and an optional attachment. Bids are immutable once created.
func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	bid := models.Bid{
		TenderID:         r.FormValue("tenderId"),
		BidderName:       r.FormValue("bidderName"),
		CompanyName:      r.FormValue("companyName"),
		CompanyRegNumber: r.FormValue("companyRegNumber"),
		Email:            r.FormValue("email"),
		PhoneNumber:      r.FormValue("phoneNumber"),
		Description:      r.FormValue("description"),
		AdditionalNotes:  r.FormValue("additionalNotes"),
	}

	if v := r.FormValue("bidAmount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "Invalid bidAmount", http.StatusBadRequest)
			return
		}
		bid.BidAmount = amount
	}
	if v := r.FormValue("expiryDate"); v != "" {
		expiry, err := parseDate(v)
		if err != nil {
			http.Error(w, "Invalid expiryDate", http.StatusBadRequest)
			return
		}
		bid.ExpiryDate = expiry
	}
	if err := json.Unmarshal([]byte(r.FormValue("proposedAmounts")), &bid.ProposedAmounts); err != nil {
		http.Error(w, "proposedAmounts must be a JSON array of numbers", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(&bid); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The per-item amounts only make sense against the parent tender's
	// schedule, so the alignment is checked at submission time.
	tender, err := h.Store.GetTender(r.Context(), bid.TenderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if len(bid.ProposedAmounts) != len(tender.ProposedAmounts) {
		http.Error(w, "proposedAmounts must match the tender's line items", http.StatusBadRequest)
		return
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		key, err := h.Files.Upload(r.Context(), header.Filename, file, header.Size,
			header.Header.Get("Content-Type"))
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		bid.FileKey = key
	}

	if err := h.Store.CreateBid(r.Context(), &bid); err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, bid)
}

// GetBidsHandler handles GET /api/bids.
func (h *Handler) GetBidsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	bids, err := h.Store.GetBids(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

// GetBidByIDHandler handles GET /api/bids/id/{bidId}.
func (h *Handler) GetBidByIDHandler(w http.ResponseWriter, r *http.Request) {
	bidID := chi.URLParam(r, "bidId")

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var fileURL string
	if bid.FileKey != "" {
		if u, err := h.Files.PresignedURL(r.Context(), bid.FileKey); err == nil {
			fileURL = u
		}
	}

	writeJSON(w, http.StatusOK, struct {
		models.Bid
		FileURL string `json:"fileUrl,omitempty"`
	}{Bid: *bid, FileURL: fileURL})
}

// GetBidsByEmailHandler handles GET /api/bids/email/{email}.
func (h *Handler) GetBidsByEmailHandler(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		http.Error(w, "Missing email", http.StatusBadRequest)
		return
	}

	bids, err := h.Store.GetBidsByEmail(r.Context(), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

// GetBidsForTenderHandler handles GET /api/bids/tender/{tenderId}.
func (h *Handler) GetBidsForTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID := chi.URLParam(r, "tenderId")

	if _, err := h.Store.GetTender(r.Context(), tenderID); err != nil {
		h.respondError(w, r, err)
		return
	}
	bids, err := h.Store.GetBidsForTender(r.Context(), tenderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}
