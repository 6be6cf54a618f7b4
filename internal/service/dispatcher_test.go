package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/battery-reminder/internal/model"
	"github.com/unclebandit/battery-reminder/internal/service"
)

func TestDispatch_BatchesAndWaits(t *testing.T) {
	gw := &MockGateway{}
	store := &MockDeliveryStore{}
	wait := &countingWait{}
	m := newTestMetrics()
	d := newDispatcher(gw, store, m, 100, wait)

	res := d.Dispatch(context.Background(), "c1", 30, recipients(250))

	assert.Equal(t, model.DispatchResult{TotalSent: 250, TotalFailed: 0, Batches: 3}, res)
	require.Len(t, gw.Calls, 3)
	assert.Len(t, gw.Calls[0], 100)
	assert.Len(t, gw.Calls[1], 100)
	assert.Len(t, gw.Calls[2], 50)
	assert.Equal(t, 2, wait.calls)
	assert.Len(t, store.Inserted, 250)
	assert.Equal(t, 250.0, testutil.ToFloat64(m.NotificationsSent))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Batches.WithLabelValues("ok")))
}

func TestDispatch_SingleBatchNoWait(t *testing.T) {
	wait := &countingWait{}
	d := newDispatcher(&MockGateway{}, &MockDeliveryStore{}, newTestMetrics(), 100, wait)

	res := d.Dispatch(context.Background(), "c1", 30, recipients(100))
	assert.Equal(t, 1, res.Batches)
	assert.Equal(t, 0, wait.calls)
}

func TestDispatch_NoRecipients(t *testing.T) {
	gw := &MockGateway{}
	d := newDispatcher(gw, &MockDeliveryStore{}, newTestMetrics(), 100, &countingWait{})

	res := d.Dispatch(context.Background(), "c1", 30, nil)
	assert.Equal(t, model.DispatchResult{}, res)
	assert.Empty(t, gw.Calls)
}

func TestDispatch_PartialFailure(t *testing.T) {
	gw := &MockGateway{SendFunc: func(msgs []model.PushMessage) (*model.BatchResult, error) {
		res := allSucceed(msgs)
		res.Responses[1] = model.SendOutcome{Err: errors.New("registration-token-not-registered")}
		res.SuccessCount--
		res.FailureCount++
		return res, nil
	}}
	store := &MockDeliveryStore{}
	m := newTestMetrics()
	d := newDispatcher(gw, store, m, 100, &countingWait{})

	rs := recipients(3)
	res := d.Dispatch(context.Background(), "c1", 30, rs)

	assert.Equal(t, 2, res.TotalSent)
	assert.Equal(t, 1, res.TotalFailed)
	require.Len(t, store.Inserted, 2)
	assert.Equal(t, rs[0].UserID, store.Inserted[0].UserID)
	assert.Equal(t, rs[2].UserID, store.Inserted[1].UserID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Batches.WithLabelValues("partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsFailed))
}

func TestDispatch_GatewayErrorFailsWholeBatchOnly(t *testing.T) {
	call := 0
	gw := &MockGateway{SendFunc: func(msgs []model.PushMessage) (*model.BatchResult, error) {
		call++
		if call == 2 {
			return nil, errors.New("unavailable")
		}
		return allSucceed(msgs), nil
	}}
	store := &MockDeliveryStore{}
	d := newDispatcher(gw, store, newTestMetrics(), 2, &countingWait{})

	res := d.Dispatch(context.Background(), "c1", 30, recipients(5))

	assert.Equal(t, 3, res.TotalSent)
	assert.Equal(t, 2, res.TotalFailed)
	assert.Equal(t, 3, res.Batches)
	assert.Len(t, store.Inserted, 3)
}

func TestDispatch_MissingOutcomesCountAsFailed(t *testing.T) {
	gw := &MockGateway{SendFunc: func(msgs []model.PushMessage) (*model.BatchResult, error) {
		return &model.BatchResult{
			SuccessCount: len(msgs),
			Responses:    []model.SendOutcome{{Success: true}},
		}, nil
	}}
	d := newDispatcher(gw, &MockDeliveryStore{}, newTestMetrics(), 100, &countingWait{})

	res := d.Dispatch(context.Background(), "c1", 30, recipients(4))
	assert.Equal(t, 1, res.TotalSent)
	assert.Equal(t, 3, res.TotalFailed)
}

func TestDispatch_SentPlusFailedEqualsRecipients(t *testing.T) {
	for _, n := range []int{1, 7, 99, 100, 101, 333} {
		call := 0
		gw := &MockGateway{SendFunc: func(msgs []model.PushMessage) (*model.BatchResult, error) {
			call++
			switch call % 3 {
			case 0:
				return nil, errors.New("boom")
			case 1:
				return allSucceed(msgs), nil
			}
			res := &model.BatchResult{}
			for i := range msgs {
				ok := i%2 == 0
				res.Responses = append(res.Responses, model.SendOutcome{Success: ok})
			}
			return res, nil
		}}
		d := newDispatcher(gw, &MockDeliveryStore{}, newTestMetrics(), 10, &countingWait{})

		res := d.Dispatch(context.Background(), "c1", 30, recipients(n))
		assert.Equal(t, n, res.TotalSent+res.TotalFailed, "n=%d", n)
	}
}

func TestDispatch_DeliveryLogFailureStillCountsAsSent(t *testing.T) {
	store := &MockDeliveryStore{InsertErr: errors.New("disk full")}
	m := newTestMetrics()
	d := newDispatcher(&MockGateway{}, store, m, 100, &countingWait{})

	res := d.Dispatch(context.Background(), "c1", 30, recipients(2))
	assert.Equal(t, 2, res.TotalSent)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DeliveryLogErrors))
}

func TestDispatch_MessageContent(t *testing.T) {
	gw := &MockGateway{}
	d := newDispatcher(gw, &MockDeliveryStore{}, newTestMetrics(), 100, &countingWait{})

	r := model.Recipient{LockID: 42, UserID: 7, FCMToken: "tok-42"}
	d.Dispatch(context.Background(), "camp-1", 30, []model.Recipient{r})

	require.Len(t, gw.Calls, 1)
	msg := gw.Calls[0][0]
	assert.Equal(t, "tok-42", msg.Token)
	assert.Equal(t, "Battery Check Reminder", msg.Title)
	assert.Equal(t, "Your lock hasn't been checked in 30 days. Please check your battery level.", msg.Body)
	assert.Equal(t, map[string]string{
		"type":               "battery_reminder",
		"lock_id":            "42",
		"campaign_id":        "camp-1",
		"click_tracking_url": "https://api.example.com/track-click/camp-1/7",
	}, msg.Data)
	assert.Equal(t, model.AndroidHints{Priority: "high", Icon: "battery_alert", Color: "#FF6B35"}, msg.Android)
	assert.Equal(t, model.APNSHints{Badge: 1, Sound: "default"}, msg.APNS)
}

func TestConstantDelay_HonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	service.ConstantDelay{Delay: time.Hour}.Wait(ctx)
	assert.Less(t, time.Since(start), time.Second)
}

func TestConstantDelay_Waits(t *testing.T) {
	start := time.Now()
	service.ConstantDelay{Delay: 20 * time.Millisecond}.Wait(context.Background())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
