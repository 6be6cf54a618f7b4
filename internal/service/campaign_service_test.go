package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/battery-reminder/internal/errors"
	"github.com/unclebandit/battery-reminder/internal/metrics"
	"github.com/unclebandit/battery-reminder/internal/model"
	"github.com/unclebandit/battery-reminder/internal/service"
)

type campaignFixture struct {
	locks      *MockLockSource
	mapping    *MockRecipientSource
	gateway    *MockGateway
	campaigns  *MockCampaignStore
	deliveries *MockDeliveryStore
	events     *MockPublisher
	wait       *countingWait
	metrics    *metrics.Metrics
	svc        *service.CampaignService
}

var runTime = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func newCampaignFixture() *campaignFixture {
	f := &campaignFixture{
		locks:      &MockLockSource{},
		mapping:    &MockRecipientSource{ByLock: map[int64]model.Recipient{}},
		gateway:    &MockGateway{},
		campaigns:  &MockCampaignStore{},
		deliveries: &MockDeliveryStore{},
		events:     &MockPublisher{},
		wait:       &countingWait{},
		metrics:    newTestMetrics(),
	}
	logger := zap.NewNop()
	clock := fixedClock(runTime)

	dispatcher := newDispatcher(f.gateway, f.deliveries, f.metrics, 100, f.wait)
	dispatcher.Delivery.Now = clock

	f.svc = &service.CampaignService{
		Scanner:       &service.StaleLockScanner{Source: f.locks, Logger: logger, Now: clock},
		Resolver:      &service.RecipientResolver{Source: f.mapping, ChunkSize: 1000, Logger: logger},
		Dispatcher:    dispatcher,
		CampaignStore: f.campaigns,
		Events:        f.events,
		Metrics:       f.metrics,
		Logger:        logger,
		ThresholdDays: 30,
		Now:           clock,
		NewID:         func() string { return "campaign-1" },
	}
	return f
}

func (f *campaignFixture) withStaleLocks(ids ...int64) {
	var page []model.Lock
	for _, id := range ids {
		page = append(page, model.Lock{LockID: id, BatteryCheckTimestamp: "2024-01-01T00:00:00.000Z"})
	}
	f.locks.Pages = [][]model.Lock{page}
}

func (f *campaignFixture) withRecipient(lockID, userID int64, token string) {
	f.mapping.ByLock[lockID] = model.Recipient{LockID: lockID, UserID: userID, FCMToken: token}
}

func TestRun_ThreeStaleLocksAllDelivered(t *testing.T) {
	f := newCampaignFixture()
	f.withStaleLocks(1, 2, 3)
	f.withRecipient(1, 10, "t1")
	f.withRecipient(2, 20, "t2")
	f.withRecipient(3, 30, "t3")

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "campaign-1", res.CampaignID)
	assert.Equal(t, 3, res.StaleLocks)
	assert.Equal(t, 3, res.Recipients)
	assert.Equal(t, 1, res.Batches)
	assert.Len(t, f.gateway.Calls, 1)
	assert.Equal(t, 0, f.wait.calls)

	require.Len(t, f.deliveries.Inserted, 3)
	for _, rec := range f.deliveries.Inserted {
		assert.Equal(t, "campaign-1", rec.CampaignID)
		assert.Equal(t, model.DeliveryStatusSent, rec.Status)
		assert.Equal(t, runTime, rec.SentAt)
	}

	require.Len(t, f.campaigns.Created, 1)
	assert.Equal(t, model.CampaignStatusRunning, f.campaigns.Created[0].Status)
	assert.Equal(t, 30, f.campaigns.Created[0].ThresholdDays)

	require.Len(t, f.campaigns.Finalized, 1)
	final := f.campaigns.Finalized[0]
	assert.Equal(t, model.CampaignStatusCompleted, final.Status)
	assert.Equal(t, 3, final.TotalSent)
	assert.Equal(t, 0, final.TotalFailed)

	require.Len(t, f.events.Events, 1)
	assert.Equal(t, service.TopicCampaignCompleted, f.events.Topics[0])
	event := f.events.Events[0].(model.CampaignEvent)
	assert.Equal(t, "campaign-1", event.CampaignID)
	assert.Equal(t, 3, event.TotalSent)
	assert.Equal(t, 1, testutil.CollectAndCount(f.metrics.CampaignDuration))
}

func TestRun_NoStaleLocks(t *testing.T) {
	f := newCampaignFixture()

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.StaleLocks)
	assert.Empty(t, f.mapping.Calls)
	assert.Empty(t, f.gateway.Calls)
	require.Len(t, f.campaigns.Finalized, 1)
	assert.Equal(t, 0, f.campaigns.Finalized[0].TotalSent)
	assert.Equal(t, 0, f.campaigns.Finalized[0].TotalFailed)
	assert.Equal(t, model.CampaignStatusCompleted, f.campaigns.Finalized[0].Status)
}

func TestRun_NoRecipientsWithTokens(t *testing.T) {
	f := newCampaignFixture()
	f.withStaleLocks(1, 2)
	f.withRecipient(1, 10, "")

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.StaleLocks)
	assert.Equal(t, 0, res.Recipients)
	assert.Empty(t, f.gateway.Calls)
	require.Len(t, f.campaigns.Finalized, 1)
	assert.Equal(t, 0, f.campaigns.Finalized[0].TotalSent)
}

func TestRun_ScanFailureFinalizesWithZeroCounts(t *testing.T) {
	f := newCampaignFixture()
	f.locks.Err = errors.New("table not found")

	_, err := f.svc.Run(context.Background())

	var backendErr *appErrors.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Len(t, f.campaigns.Finalized, 1)
	assert.Equal(t, 0, f.campaigns.Finalized[0].TotalSent)
	assert.Equal(t, 0, f.campaigns.Finalized[0].TotalFailed)
	assert.Equal(t, model.CampaignStatusCompleted, f.campaigns.Finalized[0].Status)
	assert.Empty(t, f.gateway.Calls)
}

func TestRun_ResolveFailureFinalizesWithZeroCounts(t *testing.T) {
	f := newCampaignFixture()
	f.withStaleLocks(1)
	f.mapping.Err = errors.New("pg down")

	_, err := f.svc.Run(context.Background())
	require.Error(t, err)
	require.Len(t, f.campaigns.Finalized, 1)
	assert.Equal(t, 0, f.campaigns.Finalized[0].TotalSent)
}

func TestRun_CreateFailureSkipsEverything(t *testing.T) {
	f := newCampaignFixture()
	f.withStaleLocks(1)
	f.campaigns.CreateErr = errors.New("insert failed")

	res, err := f.svc.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, res.CampaignID)
	assert.Empty(t, f.locks.Requests)
	assert.Empty(t, f.campaigns.Finalized)
	assert.Empty(t, f.events.Events)
}

func TestRun_FinalizeFailureIsNotFatal(t *testing.T) {
	f := newCampaignFixture()
	f.withStaleLocks(1)
	f.withRecipient(1, 10, "t1")
	f.campaigns.FinalizeErr = errors.New("update failed")

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalSent)
	assert.Empty(t, f.events.Events)
}

func TestRun_PublishFailureIsNotFatal(t *testing.T) {
	f := newCampaignFixture()
	f.events.Err = errors.New("broker gone")

	_, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.events.Events, 1)
}

func TestRecorder_SingleStartSingleFinalize(t *testing.T) {
	store := &MockCampaignStore{}
	r := &service.CampaignRecorder{Store: store, Logger: zap.NewNop(), Now: fixedClock(runTime)}

	assert.ErrorIs(t, r.Finalize(context.Background(), 1, 1), service.ErrRecorderNotStarted)
	assert.Nil(t, r.Campaign())

	id, err := r.Start(context.Background(), 14)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	_, err = r.Start(context.Background(), 14)
	assert.ErrorIs(t, err, service.ErrRecorderStarted)

	require.NoError(t, r.Finalize(context.Background(), 5, 2))
	assert.ErrorIs(t, r.Finalize(context.Background(), 9, 9), model.ErrInvalidTransition)

	require.Len(t, store.Finalized, 1)
	c := r.Campaign()
	assert.Equal(t, 5, c.TotalSent)
	assert.Equal(t, 2, c.TotalFailed)
	assert.Equal(t, runTime, *c.CompletedAt)
}

func TestRecorder_StoreFinalizeErrorKeepsRunning(t *testing.T) {
	store := &MockCampaignStore{FinalizeErr: errors.New("lost connection")}
	r := &service.CampaignRecorder{Store: store, Logger: zap.NewNop()}

	_, err := r.Start(context.Background(), 30)
	require.NoError(t, err)

	err = r.Finalize(context.Background(), 1, 0)
	var backendErr *appErrors.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, model.CampaignStatusRunning, r.Campaign().Status)
}
