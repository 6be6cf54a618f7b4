// internal/service/campaign_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/metrics"
	"github.com/unclebandit/battery-reminder/internal/model"
)

const TopicCampaignCompleted = "campaign.completed"

// CampaignService runs one battery reminder campaign end to end:
// record, scan, resolve, dispatch, finalize.
type CampaignService struct {
	Scanner       *StaleLockScanner
	Resolver      *RecipientResolver
	Dispatcher    *NotificationDispatcher
	CampaignStore CampaignStore
	Events        EventPublisher
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	ThresholdDays int
	Now           func() time.Time
	NewID         func() string
}

type RunResult struct {
	CampaignID string `json:"campaign_id"`
	StaleLocks int    `json:"stale_locks"`
	Recipients int    `json:"recipients"`
	model.DispatchResult
}

// Run executes a campaign. Any error after the campaign row exists still
// finalizes it with zero counts before being returned.
func (s *CampaignService) Run(ctx context.Context) (*RunResult, error) {
	started := s.now()
	recorder := &CampaignRecorder{
		Store:  s.CampaignStore,
		Logger: s.Logger,
		Now:    s.Now,
		NewID:  s.NewID,
	}

	s.Logger.Info("starting battery reminder campaign", zap.Int("threshold_days", s.ThresholdDays))

	result := &RunResult{}
	campaignID, err := recorder.Start(ctx, s.ThresholdDays)
	if err != nil {
		s.Logger.Error("campaign failed", zap.Error(err))
		s.finalize(ctx, recorder, 0, 0)
		return result, err
	}
	result.CampaignID = campaignID

	if err := s.execute(ctx, campaignID, result); err != nil {
		s.Logger.Error("campaign failed", zap.String("campaign_id", campaignID), zap.Error(err))
		s.finalize(ctx, recorder, 0, 0)
		return result, err
	}

	s.finalize(ctx, recorder, result.TotalSent, result.TotalFailed)
	s.Metrics.CampaignDuration.Observe(s.now().Sub(started).Seconds())

	s.Logger.Info("campaign completed",
		zap.String("campaign_id", campaignID),
		zap.Int("stale_locks", result.StaleLocks),
		zap.Int("recipients", result.Recipients),
		zap.Int("total_sent", result.TotalSent),
		zap.Int("total_failed", result.TotalFailed))
	return result, nil
}

func (s *CampaignService) execute(ctx context.Context, campaignID string, result *RunResult) error {
	locks, err := s.Scanner.FindStaleLocks(ctx, s.ThresholdDays)
	if err != nil {
		return err
	}
	result.StaleLocks = len(locks)
	s.Metrics.StaleLocks.Set(float64(len(locks)))
	if len(locks) == 0 {
		s.Logger.Info("no stale locks found", zap.String("campaign_id", campaignID))
		return nil
	}

	lockIDs := make([]int64, len(locks))
	for i, l := range locks {
		lockIDs[i] = l.LockID
	}
	recipients, err := s.Resolver.Resolve(ctx, lockIDs)
	if err != nil {
		return err
	}
	result.Recipients = len(recipients)
	s.Metrics.Recipients.Set(float64(len(recipients)))
	if len(recipients) == 0 {
		s.Logger.Info("no users with notification tokens", zap.String("campaign_id", campaignID))
		return nil
	}

	result.DispatchResult = s.Dispatcher.Dispatch(ctx, campaignID, s.ThresholdDays, recipients)
	return nil
}

// finalize never fails the run; a completed campaign is announced on the event queue.
func (s *CampaignService) finalize(ctx context.Context, recorder *CampaignRecorder, sent, failed int) {
	if err := recorder.Finalize(ctx, sent, failed); err != nil {
		s.Logger.Warn("failed to update campaign stats", zap.Error(err))
		return
	}
	if s.Events == nil {
		return
	}

	c := recorder.Campaign()
	event := model.CampaignEvent{
		Type:        c.Type,
		CampaignID:  c.ID,
		Status:      string(c.Status),
		TotalSent:   c.TotalSent,
		TotalFailed: c.TotalFailed,
		CompletedAt: *c.CompletedAt,
	}
	if err := s.Events.Publish(TopicCampaignCompleted, event); err != nil {
		s.Logger.Warn("failed to publish campaign event", zap.String("campaign_id", c.ID), zap.Error(err))
	}
}

func (s *CampaignService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
