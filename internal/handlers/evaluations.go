package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"smarttender/internal/notify"
	"smarttender/models"
)

// GetBidEvaluationHandler handles GET /api/bids/{bidId}/evaluation. The
// first request computes and persists the score; later requests return the
// stored record unchanged.
func (h *Handler) GetBidEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	bidID := chi.URLParam(r, "bidId")

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	record, err := h.Engine.ComputeOrFetchScore(r.Context(), bid.TenderID, bidID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// RankBidsHandler handles GET /api/tenders/{tenderId}/bids/ranked: every
// bid scored, ordered best-first, with the suggested bid called out.
func (h *Handler) RankBidsHandler(w http.ResponseWriter, r *http.Request) {
	tenderID := chi.URLParam(r, "tenderId")

	ranked, err := h.Engine.RankBids(r.Context(), tenderID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var suggested string
	if len(ranked) > 0 {
		suggested = ranked[0].Bid.ID
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestedBidId": suggested,
		"bids":           ranked,
	})
}

// ApproveBidHandler handles PUT /api/tenders/{tenderId}/approve/{bidId}.
// The decision itself is the core transition; the winner notification and
// email are side effects layered on top and never fail the request.
func (h *Handler) ApproveBidHandler(w http.ResponseWriter, r *http.Request) {
	tenderID := chi.URLParam(r, "tenderId")
	bidID := chi.URLParam(r, "bidId")

	if err := h.Engine.DecideApproval(r.Context(), tenderID, bidID); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.notifyWinner(r.Context(), tenderID, bidID)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Bid approved",
		"bidId":   bidID,
	})
}

func (h *Handler) notifyWinner(ctx context.Context, tenderID, bidID string) {
	tender, err := h.Store.GetTender(ctx, tenderID)
	if err != nil {
		h.Log.Warn("approval notification skipped", zap.Error(err))
		return
	}
	bid, err := h.Store.GetBid(ctx, bidID)
	if err != nil {
		h.Log.Warn("approval notification skipped", zap.Error(err))
		return
	}

	notification := &models.Notification{
		Email: bid.Email,
		Message: fmt.Sprintf("Your bid for tender %q has been approved.",
			tender.Title),
		TenderID: tenderID,
		BidID:    bidID,
	}
	if err := h.Store.CreateNotification(ctx, notification); err != nil {
		h.Log.Warn("failed to create approval notification", zap.Error(err))
	}

	if h.Mailer == nil || !h.Mailer.Enabled() {
		return
	}

	var score string
	if record, err := h.Store.GetEvaluationByBid(ctx, bidID); err == nil {
		score = record.Score
	}
	email := notify.ApprovalEmail{
		TenderID:        tender.ID,
		TenderTitle:     tender.Title,
		TenderType:      tender.Type,
		BidID:           bid.ID,
		BidderName:      bid.BidderName,
		BidderEmail:     bid.Email,
		BidAmount:       strconv.FormatFloat(bid.BidAmount, 'f', 2, 64),
		EvaluationScore: score,
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.Mailer.SendApproval(sendCtx, email); err != nil {
			h.Log.Warn("failed to send approval email",
				zap.String("bidId", bidID),
				zap.Error(err))
		}
	}()
}
