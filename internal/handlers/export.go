package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var exportHeader = []string{
	"TenderID", "Email", "Title", "Eligibility", "Description", "Type",
	"Status", "StartDate", "EndDate", "Materials", "Quantities",
	"ProposedAmounts", "TotalQuotation",
	"BidID", "BidderName", "CompanyName", "CompanyRegNumber", "BidderEmail",
	"PhoneNumber", "BidAmount", "ExpiryDate", "BidderPropAmounts",
	"EvaluationScore", "EvaluationStatus",
}

// ExportTenderCSVHandler handles GET /api/tenders/{tenderId}/export. The
// sheet mirrors the evaluation dashboard: one tender row followed by one
// row per bid with its score and status. Exporting scores any bid that has
// not been viewed yet.
func (h *Handler) ExportTenderCSVHandler(w http.ResponseWriter, r *http.Request) {
	tenderID := chi.URLParam(r, "tenderId")

	tender, err := h.Store.GetTender(r.Context(), tenderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	tender.Refresh(time.Now())

	ranked, err := h.Engine.RankBids(r.Context(), tenderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "tender-"+tenderID+".csv"))

	cw := csv.NewWriter(w)
	cw.Write(exportHeader)

	tenderRow := []string{
		tender.ID, tender.Email, tender.Title, tender.Eligibility,
		tender.Description, tender.Type, tender.Status,
		tender.StartDate.Format("2006-01-02"),
		tender.EndDate.Format("2006-01-02"),
		strings.Join(tender.Materials, ", "),
		joinInts(tender.Quantities),
		joinFloats(tender.ProposedAmounts),
		strconv.FormatFloat(tender.TotalQuotation, 'f', 2, 64),
		"", "", "", "", "", "", "", "", "", "", "",
	}
	cw.Write(tenderRow)

	for _, rb := range ranked {
		bidRow := []string{
			"", "", "", "", "", "", "", "", "", "", "", "", "",
			rb.Bid.ID, rb.Bid.BidderName, rb.Bid.CompanyName,
			rb.Bid.CompanyRegNumber, rb.Bid.Email, rb.Bid.PhoneNumber,
			strconv.FormatFloat(rb.Bid.BidAmount, 'f', 2, 64),
			rb.Bid.ExpiryDate.Format("2006-01-02"),
			joinFloats(rb.Bid.ProposedAmounts),
			rb.Evaluation.Score,
			rb.Evaluation.Status,
		}
		cw.Write(bidRow)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Error("csv export failed", zap.Error(err))
	}
}

func joinInts(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ", ")
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}
