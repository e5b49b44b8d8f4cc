// Package evaluation implements the bid scoring procedure and the
// approve-one/reject-rest decision for a tender.
package evaluation

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"smarttender/models"
)

// CompletedComment marks an evaluation whose score has been computed and
// persisted. Records without it are placeholders and get re-scored on the
// next view.
const CompletedComment = "Evaluated"

// Store is the slice of persistence the engine needs.
type Store interface {
	GetTender(ctx context.Context, id string) (*models.Tender, error)
	GetBid(ctx context.Context, id string) (*models.Bid, error)
	GetBidsForTender(ctx context.Context, tenderID string) ([]models.Bid, error)
	GetEvaluationByBid(ctx context.Context, bidID string) (*models.BidEvaluation, error)
	UpsertEvaluationScore(ctx context.Context, e *models.BidEvaluation) error
	ApproveBid(ctx context.Context, tenderID, winningBidID string) error
}

type Engine struct {
	store Store
}

func New(store Store) *Engine {
	return &Engine{store: store}
}

var one = decimal.NewFromInt(1)

// Score compares a bid's per-item amounts against the tender's proposed
// amounts. For each tender position i with bidder amount b: b > 0 yields
// ratio = t/b, which is subtracted when below 1 and added otherwise; b <= 0
// or a missing position contributes nothing.
func Score(tenderAmounts, bidAmounts []float64) decimal.Decimal {
	total := decimal.Zero
	for i, t := range tenderAmounts {
		var b float64
		if i < len(bidAmounts) {
			b = bidAmounts[i]
		}
		if b <= 0 {
			continue
		}
		ratio := decimal.NewFromFloat(t).Div(decimal.NewFromFloat(b))
		if ratio.LessThan(one) {
			total = total.Sub(ratio)
		} else {
			total = total.Add(ratio)
		}
	}
	return total
}

// ComputeOrFetchScore returns the bid's evaluation record, computing and
// persisting the score on first request. Repeat calls return the already
// persisted record unchanged; concurrent first calls converge on a single
// record through the store's per-bid uniqueness guarantee.
func (e *Engine) ComputeOrFetchScore(ctx context.Context, tenderID, bidID string) (*models.BidEvaluation, error) {
	existing, err := e.store.GetEvaluationByBid(ctx, bidID)
	if err == nil && existing.Comments == CompletedComment {
		return existing, nil
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	tender, err := e.store.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	bid, err := e.store.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	score := Score(tender.ProposedAmounts, bid.ProposedAmounts)
	record := &models.BidEvaluation{
		BidID:    bidID,
		Score:    score.StringFixed(3),
		Comments: CompletedComment,
	}
	if err := e.store.UpsertEvaluationScore(ctx, record); err != nil {
		return nil, err
	}

	// Re-read so a lost race still returns the record that won.
	return e.store.GetEvaluationByBid(ctx, bidID)
}

// RankedBid pairs a bid with its evaluation record.
type RankedBid struct {
	Bid        models.Bid           `json:"bid"`
	Evaluation models.BidEvaluation `json:"evaluation"`
}

// RankBids scores every bid of the tender and returns them ordered by score
// descending. Ties go to the earliest submission: the store returns bids in
// submission order and the sort is stable.
func (e *Engine) RankBids(ctx context.Context, tenderID string) ([]RankedBid, error) {
	if _, err := e.store.GetTender(ctx, tenderID); err != nil {
		return nil, err
	}
	bids, err := e.store.GetBidsForTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedBid, 0, len(bids))
	for _, bid := range bids {
		record, err := e.ComputeOrFetchScore(ctx, tenderID, bid.ID)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, RankedBid{Bid: bid, Evaluation: *record})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, errA := decimal.NewFromString(ranked[i].Evaluation.Score)
		b, errB := decimal.NewFromString(ranked[j].Evaluation.Score)
		if errA != nil || errB != nil {
			return false
		}
		return a.GreaterThan(b)
	})
	return ranked, nil
}

// DecideApproval marks the winning bid Approved and every sibling Rejected.
// The transition is transactional in the store and idempotent: rerunning it
// produces the same final state from any intermediate one.
func (e *Engine) DecideApproval(ctx context.Context, tenderID, winningBidID string) error {
	if _, err := e.store.GetTender(ctx, tenderID); err != nil {
		return err
	}
	bid, err := e.store.GetBid(ctx, winningBidID)
	if err != nil {
		return err
	}
	if bid.TenderID != tenderID {
		return models.ErrNotFound
	}
	return e.store.ApproveBid(ctx, tenderID, winningBidID)
}
