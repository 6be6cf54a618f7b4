package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/metrics"
	"github.com/unclebandit/battery-reminder/internal/model"
)

// DeliveryLogger records successful sends. Failures are logged and counted,
// never returned: a lost delivery row must not fail the batch.
type DeliveryLogger struct {
	Store   DeliveryStore
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Now     func() time.Time
}

func (l *DeliveryLogger) LogSent(ctx context.Context, campaignID string, r model.Recipient) {
	rec := model.DeliveryRecord{
		CampaignID: campaignID,
		UserID:     r.UserID,
		LockID:     r.LockID,
		FCMToken:   r.FCMToken,
		SentAt:     l.now(),
		Status:     model.DeliveryStatusSent,
	}
	if err := l.Store.Insert(ctx, rec); err != nil {
		l.Metrics.DeliveryLogErrors.Inc()
		l.Logger.Error("failed to log notification",
			zap.String("campaign_id", campaignID),
			zap.Int64("user_id", r.UserID),
			zap.Int64("lock_id", r.LockID),
			zap.Error(err))
	}
}

func (l *DeliveryLogger) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}
