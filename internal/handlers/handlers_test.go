package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smarttender/internal/evaluation"
	"smarttender/internal/handlers"
	"smarttender/internal/handlers/testutils"
	"smarttender/internal/notify"
	"smarttender/models"
)

// MockStorage implements StorageInterface in memory with the same
// semantics the real store guarantees: one evaluation per bid, first score
// write wins, transactional approval sweep.
type MockStorage struct {
	tenders       map[string]*models.Tender
	bids          map[string]*models.Bid
	evals         map[string]*models.BidEvaluation
	notifications map[string]*models.Notification
	nextID        int
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		tenders:       map[string]*models.Tender{},
		bids:          map[string]*models.Bid{},
		evals:         map[string]*models.BidEvaluation{},
		notifications: map[string]*models.Notification{},
	}
}

func (m *MockStorage) id(prefix string) string {
	m.nextID++
	return prefix + "-" + time.Now().Format("150405") + "-" + string(rune('a'+m.nextID%26)) + string(rune('a'+(m.nextID/26)%26))
}

func (m *MockStorage) CreateTender(ctx context.Context, t *models.Tender) error {
	t.ID = m.id("tender")
	t.CreatedAt = time.Now()
	copied := *t
	m.tenders[t.ID] = &copied
	return nil
}

func (m *MockStorage) GetTender(ctx context.Context, id string) (*models.Tender, error) {
	t, ok := m.tenders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *MockStorage) GetTenders(ctx context.Context, limit, offset int) ([]models.Tender, error) {
	tenders := []models.Tender{}
	for _, t := range m.tenders {
		tenders = append(tenders, *t)
	}
	return tenders, nil
}

func (m *MockStorage) GetTendersByEmail(ctx context.Context, email string) ([]models.Tender, error) {
	tenders := []models.Tender{}
	for _, t := range m.tenders {
		if t.Email == email {
			tenders = append(tenders, *t)
		}
	}
	return tenders, nil
}

func (m *MockStorage) UpdateTender(ctx context.Context, t *models.Tender) error {
	if _, ok := m.tenders[t.ID]; !ok {
		return models.ErrNotFound
	}
	copied := *t
	m.tenders[t.ID] = &copied
	return nil
}

func (m *MockStorage) DeleteTender(ctx context.Context, id string) error {
	if _, ok := m.tenders[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.tenders, id)
	return nil
}

func (m *MockStorage) CreateBid(ctx context.Context, b *models.Bid) error {
	b.ID = m.id("bid")
	b.CreatedAt = time.Now()
	copied := *b
	m.bids[b.ID] = &copied
	return nil
}

func (m *MockStorage) GetBid(ctx context.Context, id string) (*models.Bid, error) {
	b, ok := m.bids[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *MockStorage) GetBids(ctx context.Context, limit, offset int) ([]models.Bid, error) {
	bids := []models.Bid{}
	for _, b := range m.bids {
		bids = append(bids, *b)
	}
	return bids, nil
}

func (m *MockStorage) GetBidsByEmail(ctx context.Context, email string) ([]models.Bid, error) {
	bids := []models.Bid{}
	for _, b := range m.bids {
		if b.Email == email {
			bids = append(bids, *b)
		}
	}
	return bids, nil
}

func (m *MockStorage) GetBidsForTender(ctx context.Context, tenderID string) ([]models.Bid, error) {
	bids := []models.Bid{}
	for _, b := range m.bids {
		if b.TenderID == tenderID {
			bids = append(bids, *b)
		}
	}
	sort.Slice(bids, func(i, j int) bool {
		if !bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].CreatedAt.Before(bids[j].CreatedAt)
		}
		return bids[i].ID < bids[j].ID
	})
	return bids, nil
}

func (m *MockStorage) GetEvaluationByBid(ctx context.Context, bidID string) (*models.BidEvaluation, error) {
	e, ok := m.evals[bidID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *MockStorage) UpsertEvaluationScore(ctx context.Context, e *models.BidEvaluation) error {
	if existing, ok := m.evals[e.BidID]; ok && existing.Comments != "" {
		return nil
	}
	copied := *e
	if existing, ok := m.evals[e.BidID]; ok {
		copied.ID = existing.ID
		copied.Status = existing.Status
	}
	m.evals[e.BidID] = &copied
	return nil
}

func (m *MockStorage) ApproveBid(ctx context.Context, tenderID, winningBidID string) error {
	if _, ok := m.bids[winningBidID]; !ok {
		return models.ErrNotFound
	}
	for id, b := range m.bids {
		if b.TenderID != tenderID {
			continue
		}
		e, ok := m.evals[id]
		if !ok {
			e = &models.BidEvaluation{ID: m.id("eval"), BidID: id}
			m.evals[id] = e
		}
		e.Status = models.EvaluationRejected
	}
	m.evals[winningBidID].Status = models.EvaluationApproved
	return nil
}

func (m *MockStorage) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = m.id("ntf")
	n.CreatedAt = time.Now()
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

func (m *MockStorage) GetNotificationsByEmail(ctx context.Context, email string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	for _, n := range m.notifications {
		if n.Email == email {
			notifications = append(notifications, *n)
		}
	}
	return notifications, nil
}

func (m *MockStorage) MarkNotificationsRead(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if n, ok := m.notifications[id]; ok {
			n.IsRead = true
		}
	}
	return nil
}

// MockFileStore records uploads without talking to an object store.
type MockFileStore struct {
	uploads []string
	deletes []string
}

func (m *MockFileStore) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	m.uploads = append(m.uploads, filename)
	return "obj-" + filename, nil
}

func (m *MockFileStore) PresignedURL(ctx context.Context, key string) (string, error) {
	return "https://files.test/" + key, nil
}

func (m *MockFileStore) Delete(ctx context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	return nil
}

// MockMailer is disabled so approval tests stay synchronous.
type MockMailer struct{}

func (m *MockMailer) Enabled() bool { return false }
func (m *MockMailer) SendApproval(ctx context.Context, email notify.ApprovalEmail) error {
	return nil
}

func newTestHandler(store *MockStorage) *handlers.Handler {
	return handlers.NewHandler(store, evaluation.New(store), &MockFileStore{}, &MockMailer{}, nil)
}

func seedTender(store *MockStorage, amounts []float64) *models.Tender {
	tender := &models.Tender{
		Email:           "owner@example.com",
		Title:           "Test Tender",
		Type:            "Construction",
		StartDate:       time.Now().Add(-time.Hour),
		EndDate:         time.Now().Add(24 * time.Hour),
		Materials:       make([]string, len(amounts)),
		Quantities:      make([]int64, len(amounts)),
		ProposedAmounts: amounts,
	}
	for i := range amounts {
		tender.Materials[i] = "Material"
		tender.Quantities[i] = 1
	}
	store.CreateTender(context.Background(), tender)
	return tender
}

func seedBid(store *MockStorage, tenderID string, amounts []float64, created time.Time) *models.Bid {
	bid := &models.Bid{
		TenderID:        tenderID,
		BidderName:      "Bidder",
		CompanyName:     "Acme Ltd",
		Email:           "bidder@example.com",
		PhoneNumber:     "123456",
		BidAmount:       100,
		Description:     "Bid description",
		ProposedAmounts: amounts,
	}
	store.CreateBid(context.Background(), bid)
	store.bids[bid.ID].CreatedAt = created
	return bid
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestPingHandler(t *testing.T) {
	h := newTestHandler(NewMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	w := httptest.NewRecorder()
	h.PingHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestCreateTenderHandler(t *testing.T) {
	store := NewMockStorage()
	h := newTestHandler(store)

	body, contentType := multipartBody(t, map[string]string{
		"email":           "owner@example.com",
		"title":           "Bridge repair",
		"type":            "Construction",
		"startDate":       "2025-01-01",
		"endDate":         "2025-03-01",
		"materials":       `["Steel","Concrete"]`,
		"quantities":      `[2,10]`,
		"proposedAmounts": `[500,100]`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/tenders", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.CreateTenderHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "Bridge repair")

	var created models.Tender
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, 2000.0, created.TotalQuotation) // 2*500 + 10*100
	require.Len(t, store.tenders, 1)
}

func TestCreateTenderHandlerLengthMismatch(t *testing.T) {
	h := newTestHandler(NewMockStorage())

	body, contentType := multipartBody(t, map[string]string{
		"email":           "owner@example.com",
		"title":           "Bridge repair",
		"type":            "Construction",
		"startDate":       "2025-01-01",
		"endDate":         "2025-03-01",
		"materials":       `["Steel","Concrete"]`,
		"quantities":      `[2]`,
		"proposedAmounts": `[500,100]`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/tenders", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.CreateTenderHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "equal length")
}

func TestGetTenderByIDHandler(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100})
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/tenders/id/"+tender.ID, nil)
	req = testutils.WithChiURLParams(req, map[string]string{"tenderId": tender.ID})
	w := httptest.NewRecorder()

	h.GetTenderByIDHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Test Tender")
}

func TestGetTenderByIDHandlerNotFound(t *testing.T) {
	h := newTestHandler(NewMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/tenders/id/missing", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"tenderId": "missing"})
	w := httptest.NewRecorder()

	h.GetTenderByIDHandler(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBidHandler(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100, 200})
	h := newTestHandler(store)

	body, contentType := multipartBody(t, map[string]string{
		"tenderId":        tender.ID,
		"bidderName":      "Jane Smith",
		"companyName":     "Smith Construction",
		"email":           "jane@example.com",
		"phoneNumber":     "555-0101",
		"bidAmount":       "250.50",
		"description":     "Competitive offer",
		"proposedAmounts": `[90,210]`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/bids", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.CreateBidHandler(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "Jane Smith")
	require.Len(t, store.bids, 1)
}

func TestCreateBidHandlerMisaligned(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100, 200})
	h := newTestHandler(store)

	body, contentType := multipartBody(t, map[string]string{
		"tenderId":        tender.ID,
		"bidderName":      "Jane Smith",
		"companyName":     "Smith Construction",
		"email":           "jane@example.com",
		"phoneNumber":     "555-0101",
		"bidAmount":       "250.50",
		"description":     "Competitive offer",
		"proposedAmounts": `[90]`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/bids", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.CreateBidHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "line items")
}

func TestGetBidEvaluationHandler(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100, 200})
	bid := seedBid(store, tender.ID, []float64{50, 400}, time.Now())
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/bids/"+bid.ID+"/evaluation", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"bidId": bid.ID})
	w := httptest.NewRecorder()

	h.GetBidEvaluationHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "1.500")

	// A second view returns the stored record, not a new one.
	w = httptest.NewRecorder()
	h.GetBidEvaluationHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "1.500")
	require.Len(t, store.evals, 1)
}

func TestRankBidsHandler(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100, 200})
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedBid(store, tender.ID, []float64{50, 400}, base)                    // 1.500
	best := seedBid(store, tender.ID, []float64{50, 200}, base.Add(time.Hour)) // 3.000
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/tenders/"+tender.ID+"/bids/ranked", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"tenderId": tender.ID})
	w := httptest.NewRecorder()

	h.RankBidsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SuggestedBidID string                  `json:"suggestedBidId"`
		Bids           []evaluation.RankedBid  `json:"bids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, best.ID, resp.SuggestedBidID)
	require.Len(t, resp.Bids, 2)
	require.Equal(t, "3.000", resp.Bids[0].Evaluation.Score)
}

func TestApproveBidHandler(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100})
	now := time.Now()
	loser := seedBid(store, tender.ID, []float64{200}, now)
	winner := seedBid(store, tender.ID, []float64{50}, now.Add(time.Minute))
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodPut,
		"/api/tenders/"+tender.ID+"/approve/"+winner.ID, nil)
	req = testutils.WithChiURLParams(req, map[string]string{
		"tenderId": tender.ID,
		"bidId":    winner.ID,
	})
	w := httptest.NewRecorder()

	h.ApproveBidHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.EvaluationApproved, store.evals[winner.ID].Status)
	require.Equal(t, models.EvaluationRejected, store.evals[loser.ID].Status)

	// The winner gets an in-app notification.
	notifications, err := store.GetNotificationsByEmail(context.Background(), winner.Email)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Contains(t, notifications[0].Message, "approved")
}

func TestApproveBidHandlerUnknownBid(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100})
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodPut,
		"/api/tenders/"+tender.ID+"/approve/missing", nil)
	req = testutils.WithChiURLParams(req, map[string]string{
		"tenderId": tender.ID,
		"bidId":    "missing",
	})
	w := httptest.NewRecorder()

	h.ApproveBidHandler(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportTenderCSVHandler(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100})
	seedBid(store, tender.ID, []float64{50}, time.Now())
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/tenders/"+tender.ID+"/export", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"tenderId": tender.ID})
	w := httptest.NewRecorder()

	h.ExportTenderCSVHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3) // header, tender row, one bid row
	require.Contains(t, lines[0], "EvaluationScore")
	require.Contains(t, lines[1], tender.ID)
	require.Contains(t, lines[2], "2.000")
}

func TestListNotificationsHandler(t *testing.T) {
	store := NewMockStorage()
	store.CreateNotification(context.Background(), &models.Notification{
		Email:   "bidder@example.com",
		Message: "Your bid has been approved.",
	})
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications?email=bidder@example.com", nil)
	w := httptest.NewRecorder()

	h.ListNotificationsHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "approved")
}

func TestListNotificationsHandlerMissingEmail(t *testing.T) {
	h := newTestHandler(NewMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	w := httptest.NewRecorder()

	h.ListNotificationsHandler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkNotificationsReadHandler(t *testing.T) {
	store := NewMockStorage()
	n := &models.Notification{Email: "bidder@example.com", Message: "hello"}
	store.CreateNotification(context.Background(), n)
	h := newTestHandler(store)

	body, _ := json.Marshal(map[string][]string{"notificationIds": {n.ID}})
	req := httptest.NewRequest(http.MethodPut, "/api/notifications/mark-read", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.MarkNotificationsReadHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, store.notifications[n.ID].IsRead)
}

func TestUpdateTenderHandler(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100})
	h := newTestHandler(store)

	body := `{"title":"Updated Tender","materials":["Steel"],"quantities":[3],"proposedAmounts":[50]}`
	req := httptest.NewRequest(http.MethodPut, "/api/tenders/"+tender.ID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutils.WithChiURLParams(req, map[string]string{"tenderId": tender.ID})
	w := httptest.NewRecorder()

	h.UpdateTenderHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Updated Tender")
	require.Equal(t, 150.0, store.tenders[tender.ID].TotalQuotation)
}

func TestDeleteTenderHandler(t *testing.T) {
	store := NewMockStorage()
	tender := seedTender(store, []float64{100})
	h := newTestHandler(store)

	req := httptest.NewRequest(http.MethodDelete, "/api/tenders/"+tender.ID, nil)
	req = testutils.WithChiURLParams(req, map[string]string{"tenderId": tender.ID})
	w := httptest.NewRecorder()

	h.DeleteTenderHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, store.tenders)
}
