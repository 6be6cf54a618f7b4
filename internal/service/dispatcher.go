package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/metrics"
	"github.com/unclebandit/battery-reminder/internal/model"
)

const DefaultBatchSize = 100

var errMissingOutcome = errors.New("gateway returned no outcome for message")

// NotificationDispatcher sends recipients in fixed-size batches and accounts
// every recipient as exactly one of sent or failed.
type NotificationDispatcher struct {
	Gateway   PushGateway
	Delivery  *DeliveryLogger
	Messages  MessageBuilder
	BatchSize int
	Wait      WaitStrategy
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

func (d *NotificationDispatcher) Dispatch(ctx context.Context, campaignID string, thresholdDays int, recipients []model.Recipient) model.DispatchResult {
	size := d.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := chunk(recipients, size)

	var result model.DispatchResult
	for i, batch := range batches {
		sent, failed := d.sendBatch(ctx, campaignID, thresholdDays, batch)
		result.TotalSent += sent
		result.TotalFailed += failed
		result.Batches++

		d.Logger.Info("batch dispatched",
			zap.String("campaign_id", campaignID),
			zap.Int("batch", i+1),
			zap.Int("of", len(batches)),
			zap.Int("sent", sent),
			zap.Int("failed", failed))

		if i < len(batches)-1 && d.Wait != nil {
			d.Wait.Wait(ctx)
		}
	}
	return result
}

func (d *NotificationDispatcher) sendBatch(ctx context.Context, campaignID string, thresholdDays int, batch []model.Recipient) (sent, failed int) {
	msgs := make([]model.PushMessage, len(batch))
	for i, r := range batch {
		msgs[i] = d.Messages.Build(campaignID, thresholdDays, r)
	}

	resp, err := d.Gateway.SendMulticast(ctx, msgs)
	if err != nil {
		d.Logger.Error("batch send failed",
			zap.String("campaign_id", campaignID),
			zap.Int("size", len(batch)),
			zap.Error(err))
		d.Metrics.Batches.WithLabelValues("failed").Inc()
		d.Metrics.NotificationsFailed.Add(float64(len(batch)))
		return 0, len(batch)
	}
	if resp == nil {
		resp = &model.BatchResult{}
	}

	for i, r := range batch {
		outcome := model.SendOutcome{Err: errMissingOutcome}
		if i < len(resp.Responses) {
			outcome = resp.Responses[i]
		}
		if outcome.Success {
			d.Delivery.LogSent(ctx, campaignID, r)
			sent++
			continue
		}
		failed++
		d.Logger.Warn("notification rejected",
			zap.String("campaign_id", campaignID),
			zap.Int64("user_id", r.UserID),
			zap.Int64("lock_id", r.LockID),
			zap.Error(outcome.Err))
	}

	if resp.SuccessCount != sent || resp.FailureCount != failed {
		d.Logger.Warn("gateway counts disagree with per-message outcomes",
			zap.String("campaign_id", campaignID),
			zap.Int("gateway_success", resp.SuccessCount),
			zap.Int("gateway_failure", resp.FailureCount),
			zap.Int("sent", sent),
			zap.Int("failed", failed))
	}

	outcome := "ok"
	if failed > 0 {
		outcome = "partial"
	}
	d.Metrics.Batches.WithLabelValues(outcome).Inc()
	d.Metrics.NotificationsSent.Add(float64(sent))
	d.Metrics.NotificationsFailed.Add(float64(failed))
	return sent, failed
}
