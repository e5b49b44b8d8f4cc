package db

import (
	"context"

	"github.com/google/uuid"

	"smarttender/models"
)

func (s *Storage) CreateBid(ctx context.Context, b *models.Bid) error {
	b.ID = uuid.NewString()
	query := `
        INSERT INTO bid
            (id, tender_id, bidder_name, company_name, company_reg_number,
             email, phone_number, bid_amount, description, additional_notes,
             expiry_date, file_key, proposed_amounts)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING created_at`
	err := s.db.QueryRowContext(ctx, query,
		b.ID, b.TenderID, b.BidderName, b.CompanyName, b.CompanyRegNumber,
		b.Email, b.PhoneNumber, b.BidAmount, b.Description, b.AdditionalNotes,
		b.ExpiryDate, b.FileKey, b.ProposedAmounts).
		Scan(&b.CreatedAt)
	return wrap("create bid", err)
}

func (s *Storage) GetBid(ctx context.Context, id string) (*models.Bid, error) {
	b := &models.Bid{}
	query := `SELECT * FROM bid WHERE id=$1`
	if err := s.db.GetContext(ctx, b, query, id); err != nil {
		return nil, wrap("get bid", err)
	}
	return b, nil
}

func (s *Storage) GetBids(ctx context.Context, limit, offset int) ([]models.Bid, error) {
	query := `SELECT * FROM bid ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	bids := []models.Bid{}
	if err := s.db.SelectContext(ctx, &bids, query, limit, offset); err != nil {
		return nil, wrap("list bids", err)
	}
	return bids, nil
}

func (s *Storage) GetBidsByEmail(ctx context.Context, email string) ([]models.Bid, error) {
	query := `SELECT * FROM bid WHERE email=$1 ORDER BY created_at DESC`
	bids := []models.Bid{}
	if err := s.db.SelectContext(ctx, &bids, query, email); err != nil {
		return nil, wrap("bids by email", err)
	}
	return bids, nil
}

// GetBidsForTender returns the tender's bids in submission order. The
// ranking tie-break depends on this ordering staying ascending and stable.
func (s *Storage) GetBidsForTender(ctx context.Context, tenderID string) ([]models.Bid, error) {
	query := `SELECT * FROM bid WHERE tender_id=$1 ORDER BY created_at ASC, id ASC`
	bids := []models.Bid{}
	if err := s.db.SelectContext(ctx, &bids, query, tenderID); err != nil {
		return nil, wrap("bids for tender", err)
	}
	return bids, nil
}
