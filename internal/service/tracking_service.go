package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/battery-reminder/internal/errors"
	"github.com/unclebandit/battery-reminder/internal/metrics"
	"github.com/unclebandit/battery-reminder/internal/model"
)

// TrackingService records clicks and battery-check conversions.
type TrackingService struct {
	Deliveries DeliveryStore
	Engagement EngagementStore
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	Now        func() time.Time
}

// TrackClick stores the click as given. Campaign and user ids are not checked
// against existing campaigns.
func (s *TrackingService) TrackClick(ctx context.Context, click model.ClickEvent) error {
	if click.ClickedAt.IsZero() {
		click.ClickedAt = s.now()
	}
	if err := s.Engagement.InsertClick(ctx, click); err != nil {
		return appErrors.NewBackend("record click", err)
	}
	s.Metrics.Clicks.Inc()
	s.Logger.Info("click tracked",
		zap.String("campaign_id", click.CampaignID),
		zap.Int64("user_id", click.UserID))
	return nil
}

// TrackBatteryCheck attributes a battery check to the most recent notification
// for (campaign, user, lock) and returns the whole days elapsed since it was sent.
func (s *TrackingService) TrackBatteryCheck(ctx context.Context, campaignID string, userID, lockID int64) (int, error) {
	var missing []string
	if campaignID == "" {
		missing = append(missing, "campaignId")
	}
	if userID == 0 {
		missing = append(missing, "userId")
	}
	if lockID == 0 {
		missing = append(missing, "lockId")
	}
	if len(missing) > 0 {
		s.Metrics.Conversions.WithLabelValues("invalid").Inc()
		return 0, appErrors.NewValidation(missing...)
	}

	sent, err := s.Deliveries.Latest(ctx, campaignID, userID, lockID)
	if err != nil {
		s.Metrics.Conversions.WithLabelValues("error").Inc()
		return 0, appErrors.NewBackend("find notification", err)
	}
	if sent == nil {
		s.Metrics.Conversions.WithLabelValues("not_found").Inc()
		return 0, appErrors.NewDeliveryNotFound(campaignID, userID, lockID)
	}

	now := s.now()
	days := DaysSince(sent.SentAt, now)
	action := model.ConversionAction{
		CampaignID:            campaignID,
		UserID:                userID,
		LockID:                lockID,
		DaysAfterNotification: days,
		CheckedAt:             now,
	}
	if err := s.Engagement.InsertConversion(ctx, action); err != nil {
		s.Metrics.Conversions.WithLabelValues("error").Inc()
		return 0, appErrors.NewBackend("record battery check", err)
	}

	s.Metrics.Conversions.WithLabelValues("recorded").Inc()
	s.Logger.Info("battery check tracked",
		zap.String("campaign_id", campaignID),
		zap.Int64("user_id", userID),
		zap.Int64("lock_id", lockID),
		zap.Int("days_after_notification", days))
	return days, nil
}

// DaysSince is floor((now - sentAt) / 24h), never negative.
func DaysSince(sentAt, now time.Time) int {
	elapsed := now.Sub(sentAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

func (s *TrackingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
