package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"smarttender/models"
)

func (s *Storage) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.NewString()
	query := `
        INSERT INTO notification (id, email, message, tender_id, bid_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`
	err := s.db.QueryRowContext(ctx, query,
		n.ID, n.Email, n.Message, n.TenderID, n.BidID).
		Scan(&n.CreatedAt)
	return wrap("create notification", err)
}

func (s *Storage) GetNotificationsByEmail(ctx context.Context, email string) ([]models.Notification, error) {
	query := `SELECT * FROM notification WHERE email=$1 ORDER BY created_at DESC`
	notifications := []models.Notification{}
	if err := s.db.SelectContext(ctx, &notifications, query, email); err != nil {
		return nil, wrap("notifications by email", err)
	}
	return notifications, nil
}

func (s *Storage) MarkNotificationsRead(ctx context.Context, ids []string) error {
	query := `UPDATE notification SET is_read = TRUE WHERE id = ANY($1)`
	_, err := s.db.ExecContext(ctx, query, pq.Array(ids))
	return wrap("mark notifications read", err)
}
