package db

import (
	"context"

	"github.com/google/uuid"

	"smarttender/models"
)

func (s *Storage) CreateTender(ctx context.Context, t *models.Tender) error {
	t.ID = uuid.NewString()
	query := `
        INSERT INTO tender
            (id, email, title, eligibility, description, type, status,
             start_date, end_date, document_key, materials, quantities,
             proposed_amounts, total_quotation)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query,
		t.ID, t.Email, t.Title, t.Eligibility, t.Description, t.Type, t.Status,
		t.StartDate, t.EndDate, t.DocumentKey, t.Materials, t.Quantities,
		t.ProposedAmounts, t.TotalQuotation).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	return wrap("create tender", err)
}

func (s *Storage) GetTender(ctx context.Context, id string) (*models.Tender, error) {
	t := &models.Tender{}
	query := `SELECT * FROM tender WHERE id=$1`
	if err := s.db.GetContext(ctx, t, query, id); err != nil {
		return nil, wrap("get tender", err)
	}
	return t, nil
}

func (s *Storage) GetTenders(ctx context.Context, limit, offset int) ([]models.Tender, error) {
	query := `SELECT * FROM tender ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	tenders := []models.Tender{}
	if err := s.db.SelectContext(ctx, &tenders, query, limit, offset); err != nil {
		return nil, wrap("list tenders", err)
	}
	return tenders, nil
}

func (s *Storage) GetTendersByEmail(ctx context.Context, email string) ([]models.Tender, error) {
	query := `SELECT * FROM tender WHERE email=$1 ORDER BY created_at DESC`
	tenders := []models.Tender{}
	if err := s.db.SelectContext(ctx, &tenders, query, email); err != nil {
		return nil, wrap("tenders by email", err)
	}
	return tenders, nil
}

// UpdateTender replaces the mutable fields wholesale, line items included.
func (s *Storage) UpdateTender(ctx context.Context, t *models.Tender) error {
	query := `
        UPDATE tender
        SET title=$1, eligibility=$2, description=$3, type=$4, status=$5,
            start_date=$6, end_date=$7, document_key=$8, materials=$9,
            quantities=$10, proposed_amounts=$11, total_quotation=$12,
            updated_at=NOW()
        WHERE id=$13`
	res, err := s.db.ExecContext(ctx, query,
		t.Title, t.Eligibility, t.Description, t.Type, t.Status,
		t.StartDate, t.EndDate, t.DocumentKey, t.Materials, t.Quantities,
		t.ProposedAmounts, t.TotalQuotation, t.ID)
	if err != nil {
		return wrap("update tender", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteTender(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tender WHERE id=$1`, id)
	if err != nil {
		return wrap("delete tender", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}
