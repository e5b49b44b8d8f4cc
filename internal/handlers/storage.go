package handlers

import (
	"context"
	"io"

	"smarttender/internal/notify"
	"smarttender/models"
)

type StorageInterface interface {
	CreateTender(ctx context.Context, tender *models.Tender) error
	GetTender(ctx context.Context, id string) (*models.Tender, error)
	GetTenders(ctx context.Context, limit, offset int) ([]models.Tender, error)
	GetTendersByEmail(ctx context.Context, email string) ([]models.Tender, error)
	UpdateTender(ctx context.Context, tender *models.Tender) error
	DeleteTender(ctx context.Context, id string) error

	CreateBid(ctx context.Context, bid *models.Bid) error
	GetBid(ctx context.Context, id string) (*models.Bid, error)
	GetBids(ctx context.Context, limit, offset int) ([]models.Bid, error)
	GetBidsByEmail(ctx context.Context, email string) ([]models.Bid, error)
	GetBidsForTender(ctx context.Context, tenderID string) ([]models.Bid, error)

	GetEvaluationByBid(ctx context.Context, bidID string) (*models.BidEvaluation, error)
	UpsertEvaluationScore(ctx context.Context, e *models.BidEvaluation) error
	ApproveBid(ctx context.Context, tenderID, winningBidID string) error

	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotificationsByEmail(ctx context.Context, email string) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, ids []string) error
}

// FileStore is the attachment storage consumed by the upload handlers.
type FileStore interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Mailer sends the approval email to the winning bidder.
type Mailer interface {
	Enabled() bool
	SendApproval(ctx context.Context, email notify.ApprovalEmail) error
}
