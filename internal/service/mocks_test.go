package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/metrics"
	"github.com/unclebandit/battery-reminder/internal/model"
	"github.com/unclebandit/battery-reminder/internal/service"
)

// --- Mock lock source ---

// MockLockSource serves Pages in order; the cursor is the index of the next page.
type MockLockSource struct {
	Pages    [][]model.Lock
	Err      error
	Requests []model.ScanRequest
}

func (m *MockLockSource) ScanPage(ctx context.Context, req model.ScanRequest) (model.LockPage, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return model.LockPage{}, m.Err
	}
	idx := 0
	if req.Cursor != nil {
		idx = req.Cursor.(int)
	}
	if idx >= len(m.Pages) {
		return model.LockPage{}, nil
	}
	page := model.LockPage{Locks: m.Pages[idx]}
	if idx+1 < len(m.Pages) {
		page.Next = idx + 1
	}
	return page, nil
}

// --- Mock recipient source ---

type MockRecipientSource struct {
	ByLock map[int64]model.Recipient
	Err    error
	Calls  [][]int64
}

func (m *MockRecipientSource) FindRecipients(ctx context.Context, lockIDs []int64) ([]model.Recipient, error) {
	m.Calls = append(m.Calls, append([]int64(nil), lockIDs...))
	if m.Err != nil {
		return nil, m.Err
	}
	var out []model.Recipient
	for _, id := range lockIDs {
		if r, ok := m.ByLock[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- Mock push gateway ---

type MockGateway struct {
	SendFunc func(msgs []model.PushMessage) (*model.BatchResult, error)
	Calls    [][]model.PushMessage
}

func (m *MockGateway) SendMulticast(ctx context.Context, msgs []model.PushMessage) (*model.BatchResult, error) {
	m.Calls = append(m.Calls, msgs)
	if m.SendFunc != nil {
		return m.SendFunc(msgs)
	}
	return allSucceed(msgs), nil
}

func allSucceed(msgs []model.PushMessage) *model.BatchResult {
	res := &model.BatchResult{SuccessCount: len(msgs)}
	for i := range msgs {
		res.Responses = append(res.Responses, model.SendOutcome{Success: true, MessageID: fmt.Sprintf("m-%d", i)})
	}
	return res
}

// --- Mock stores ---

type MockCampaignStore struct {
	CreateErr   error
	FinalizeErr error
	Created     []model.Campaign
	Finalized   []model.Campaign
}

func (m *MockCampaignStore) Create(ctx context.Context, c *model.Campaign) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Created = append(m.Created, *c)
	return nil
}

func (m *MockCampaignStore) Finalize(ctx context.Context, c *model.Campaign) error {
	if m.FinalizeErr != nil {
		return m.FinalizeErr
	}
	m.Finalized = append(m.Finalized, *c)
	return nil
}

type MockDeliveryStore struct {
	InsertErr  error
	Inserted   []model.DeliveryRecord
	LatestFunc func(campaignID string, userID, lockID int64) (*model.DeliveryRecord, error)
}

func (m *MockDeliveryStore) Insert(ctx context.Context, rec model.DeliveryRecord) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Inserted = append(m.Inserted, rec)
	return nil
}

func (m *MockDeliveryStore) Latest(ctx context.Context, campaignID string, userID, lockID int64) (*model.DeliveryRecord, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc(campaignID, userID, lockID)
	}
	for i := len(m.Inserted) - 1; i >= 0; i-- {
		r := m.Inserted[i]
		if r.CampaignID == campaignID && r.UserID == userID && r.LockID == lockID {
			return &r, nil
		}
	}
	return nil, nil
}

type MockEngagementStore struct {
	Err         error
	Clicks      []model.ClickEvent
	Conversions []model.ConversionAction
}

func (m *MockEngagementStore) InsertClick(ctx context.Context, click model.ClickEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Clicks = append(m.Clicks, click)
	return nil
}

func (m *MockEngagementStore) InsertConversion(ctx context.Context, action model.ConversionAction) error {
	if m.Err != nil {
		return m.Err
	}
	m.Conversions = append(m.Conversions, action)
	return nil
}

type MockAnalyticsStore struct {
	Err          error
	Counts       []model.CampaignCounts
	Engagement   []model.UserEngagement
	ResponseDays []model.ResponseDays

	FilterArg string
	SinceArg  time.Time
}

func (m *MockAnalyticsStore) ListEffectiveness(ctx context.Context, campaignID string) ([]model.CampaignCounts, error) {
	m.FilterArg = campaignID
	if m.Err != nil {
		return nil, m.Err
	}
	if campaignID == "" {
		return m.Counts, nil
	}
	var out []model.CampaignCounts
	for _, c := range m.Counts {
		if c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockAnalyticsStore) ListEffectivenessSince(ctx context.Context, since time.Time) ([]model.CampaignCounts, error) {
	m.SinceArg = since
	if m.Err != nil {
		return nil, m.Err
	}
	var out []model.CampaignCounts
	for _, c := range m.Counts {
		if !c.CreatedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockAnalyticsStore) ListUserEngagement(ctx context.Context) ([]model.UserEngagement, error) {
	return m.Engagement, m.Err
}

func (m *MockAnalyticsStore) ListResponseDays(ctx context.Context) ([]model.ResponseDays, error) {
	return m.ResponseDays, m.Err
}

// --- Misc ---

type MockPublisher struct {
	Err    error
	Topics []string
	Events []any
}

func (m *MockPublisher) Publish(topic string, payload any) error {
	m.Topics = append(m.Topics, topic)
	m.Events = append(m.Events, payload)
	return m.Err
}

type countingWait struct {
	calls int
}

func (w *countingWait) Wait(ctx context.Context) {
	w.calls++
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newDispatcher(gw service.PushGateway, store service.DeliveryStore, m *metrics.Metrics, batchSize int, wait service.WaitStrategy) *service.NotificationDispatcher {
	return &service.NotificationDispatcher{
		Gateway: gw,
		Delivery: &service.DeliveryLogger{
			Store:   store,
			Metrics: m,
			Logger:  zap.NewNop(),
		},
		Messages:  service.MessageBuilder{ClickTrackingBaseURL: "https://api.example.com"},
		BatchSize: batchSize,
		Wait:      wait,
		Metrics:   m,
		Logger:    zap.NewNop(),
	}
}

func recipients(n int) []model.Recipient {
	out := make([]model.Recipient, n)
	for i := range out {
		out[i] = model.Recipient{
			LockID:   int64(1000 + i),
			UserID:   int64(1 + i),
			FCMToken: fmt.Sprintf("token-%d", i),
		}
	}
	return out
}
