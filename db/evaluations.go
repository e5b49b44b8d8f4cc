package db

import (
	"context"

	"github.com/google/uuid"

	"smarttender/models"
)

func (s *Storage) GetEvaluationByBid(ctx context.Context, bidID string) (*models.BidEvaluation, error) {
	e := &models.BidEvaluation{}
	query := `SELECT * FROM bid_evaluation WHERE bid_id=$1`
	if err := s.db.GetContext(ctx, e, query, bidID); err != nil {
		return nil, wrap("get evaluation", err)
	}
	return e, nil
}

// UpsertEvaluationScore records a score exactly once per bid. The unique
// constraint on bid_id plus the empty-comments guard make concurrent
// scorers converge on whichever write landed first; the status column is
// never touched here.
func (s *Storage) UpsertEvaluationScore(ctx context.Context, e *models.BidEvaluation) error {
	e.ID = uuid.NewString()
	query := `
        INSERT INTO bid_evaluation (id, bid_id, score, comments)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (bid_id) DO UPDATE
            SET score = EXCLUDED.score, comments = EXCLUDED.comments
            WHERE bid_evaluation.comments = ''`
	_, err := s.db.ExecContext(ctx, query, e.ID, e.BidID, e.Score, e.Comments)
	return wrap("upsert evaluation score", err)
}

// ApproveBid executes the approval transition for a tender in a single
// transaction: evaluation rows are created for any bid that has never been
// scored, every bid is marked Rejected, then the winner is overwritten to
// Approved. Re-running yields the same final state.
func (s *Storage) ApproveBid(ctx context.Context, tenderID, winningBidID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("approve bid: begin", err)
	}
	defer tx.Rollback()

	ensure := `
        INSERT INTO bid_evaluation (id, bid_id)
        SELECT gen_random_uuid(), b.id FROM bid b WHERE b.tender_id = $1
        ON CONFLICT (bid_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, ensure, tenderID); err != nil {
		return wrap("approve bid: ensure rows", err)
	}

	rejectAll := `
        UPDATE bid_evaluation SET status = $1
        WHERE bid_id IN (SELECT id FROM bid WHERE tender_id = $2)`
	if _, err := tx.ExecContext(ctx, rejectAll, models.EvaluationRejected, tenderID); err != nil {
		return wrap("approve bid: reject all", err)
	}

	approve := `UPDATE bid_evaluation SET status = $1 WHERE bid_id = $2`
	res, err := tx.ExecContext(ctx, approve, models.EvaluationApproved, winningBidID)
	if err != nil {
		return wrap("approve bid: approve winner", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}

	return wrap("approve bid: commit", tx.Commit())
}
