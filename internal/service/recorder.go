package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/battery-reminder/internal/errors"
	"github.com/unclebandit/battery-reminder/internal/model"
)

var (
	ErrRecorderStarted    = errors.New("campaign recorder already started")
	ErrRecorderNotStarted = errors.New("campaign recorder has no campaign to finalize")
)

// CampaignRecorder owns the lifecycle row of a single run: one Start, one Finalize.
type CampaignRecorder struct {
	Store  CampaignStore
	Logger *zap.Logger
	Now    func() time.Time
	NewID  func() string

	campaign *model.Campaign
}

// Start persists a new running campaign and returns its id.
func (r *CampaignRecorder) Start(ctx context.Context, thresholdDays int) (string, error) {
	if r.campaign != nil {
		return "", ErrRecorderStarted
	}

	c := &model.Campaign{
		ID:            r.newID(),
		Type:          model.CampaignTypeBatteryReminder,
		CreatedAt:     r.now(),
		ThresholdDays: thresholdDays,
		Status:        model.CampaignStatusRunning,
	}
	if err := r.Store.Create(ctx, c); err != nil {
		return "", appErrors.NewBackend("create campaign", err)
	}
	r.campaign = c

	r.Logger.Info("campaign started", zap.String("campaign_id", c.ID), zap.Int("threshold_days", thresholdDays))
	return c.ID, nil
}

// Finalize writes the final counts and moves the campaign to completed.
// Callers treat a returned error as loggable only.
func (r *CampaignRecorder) Finalize(ctx context.Context, totalSent, totalFailed int) error {
	if r.campaign == nil {
		return ErrRecorderNotStarted
	}

	next := *r.campaign
	if err := next.Complete(totalSent, totalFailed, r.now()); err != nil {
		return err
	}
	if err := r.Store.Finalize(ctx, &next); err != nil {
		return appErrors.NewBackend("finalize campaign", err)
	}
	*r.campaign = next

	r.Logger.Info("campaign finalized",
		zap.String("campaign_id", next.ID),
		zap.Int("total_sent", totalSent),
		zap.Int("total_failed", totalFailed))
	return nil
}

// Campaign returns a copy of the recorded campaign, or nil before Start.
func (r *CampaignRecorder) Campaign() *model.Campaign {
	if r.campaign == nil {
		return nil
	}
	c := *r.campaign
	return &c
}

func (r *CampaignRecorder) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *CampaignRecorder) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}
